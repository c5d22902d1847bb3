package frame

import (
	"time"

	"github.com/norasector/turbine-common/types"
)

// EncodedFrame is one frame of FOX bits on its way to the outputs.
// Segment.Data holds one bit per byte.
type EncodedFrame struct {
	ALFN      uint32
	Timestamp time.Time
	Segment   *types.SegmentBinaryBytes
}
