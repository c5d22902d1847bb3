package station

import (
	"context"

	"github.com/norasector/foxcast/pkg/sis/frame"
)

// BitOutput handles encoded frames.
type BitOutput interface {
	// Start receives a context and should run in a loop, terminating upon ctx closing or on any errors.
	Start(ctx context.Context) error
	// Receive returns a channel that receives encoded frames.
	Receive() chan<- *frame.EncodedFrame
}
