package output

import (
	"bufio"
	"context"
	"io"

	"github.com/norasector/foxcast/pkg/sis/frame"
	"github.com/norasector/foxcast/pkg/util"
)

const frameBufferLength int = 8

// WriterOutput writes frames to an io.Writer, either one byte per bit or
// packed eight bits per byte, MSB first.
type WriterOutput struct {
	dest     io.Writer
	packed   bool
	recvChan chan *frame.EncodedFrame
}

func NewWriterOutput(dest io.Writer, packed bool) *WriterOutput {
	return &WriterOutput{
		dest:     dest,
		packed:   packed,
		recvChan: make(chan *frame.EncodedFrame, frameBufferLength),
	}
}

func (s *WriterOutput) Receive() chan<- *frame.EncodedFrame {
	return s.recvChan
}

func (s *WriterOutput) Start(ctx context.Context) error {
	w := bufio.NewWriter(s.dest)

	for {
		select {
		case <-ctx.Done():
			if err := w.Flush(); err != nil {
				return err
			}
			return ctx.Err()

		case encoded := <-s.recvChan:
			data := encoded.Segment.Data
			if s.packed {
				data = util.PackBits(data)
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			// Flush once the queue drains so readers see whole frames.
			if len(s.recvChan) == 0 {
				if err := w.Flush(); err != nil {
					return err
				}
			}
		}
	}
}
