package frame

import "context"

// Processor consumes assembled blocks until ctx is done.
type Processor interface {
	Start(context.Context) error
}
