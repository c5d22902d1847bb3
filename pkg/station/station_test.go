package station

import (
	"context"
	"testing"
	"time"

	"github.com/norasector/foxcast/pkg/sis"
	"github.com/norasector/foxcast/pkg/sis/frame"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanOutput struct {
	ch chan *frame.EncodedFrame
}

func (c *chanOutput) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *chanOutput) Receive() chan<- *frame.EncodedFrame {
	return c.ch
}

func testOptions(outputs ...BitOutput) Options {
	return Options{
		StationName: "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456",
		StartALFN:   800000000,
		Outputs:     outputs,
	}
}

func TestNewStationRejectsName(t *testing.T) {
	_, err := NewStation(Options{StationName: "SHORT"}, WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, sis.ErrInvalidNameLength)

	opts := testOptions()
	opts.StrictAlphabet = true
	_, err = NewStation(opts, WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, sis.ErrInvalidNameChar)
}

func TestEmitFrame(t *testing.T) {
	fast := &chanOutput{ch: make(chan *frame.EncodedFrame, 4)}
	blocked := &chanOutput{ch: make(chan *frame.EncodedFrame)}

	s, err := NewStation(testOptions(fast, blocked), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.NoError(t, s.emitFrame(context.Background()))
	require.NoError(t, s.emitFrame(context.Background()))

	first := <-fast.ch
	second := <-fast.ch
	assert.Equal(t, uint32(800000000), first.ALFN)
	assert.Equal(t, uint32(800000001), second.ALFN)
	assert.Equal(t, 1, first.Segment.SegmentNumber)
	assert.Equal(t, 2, second.Segment.SegmentNumber)
	assert.Len(t, first.Segment.Data, sis.FrameBits)
	assert.Greater(t, first.Segment.SymbolRate, 2000)

	blocks, err := sis.ParseFrame(first.Segment.Data)
	require.NoError(t, err)
	slices := make([]uint8, 0, len(blocks))
	for _, b := range blocks {
		slices = append(slices, b.ALFNSlice)
	}
	assert.Equal(t, uint32(800000000), sis.ReconstructALFN(slices))

	status := s.Status()
	assert.Equal(t, uint32(800000002), status.ALFN)
	assert.Equal(t, 2, status.FramesEmitted)
	assert.Equal(t, 2, status.SkippedOutputs)
	assert.Equal(t, second.Segment.Data, s.LastFrame())
}

func TestStationLoopback(t *testing.T) {
	opts := testOptions()
	opts.FrameInterval = 5 * time.Millisecond
	opts.Loopback = true

	s, err := NewStation(opts, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return s.Status().VerifiedFrames >= 2
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, <-errc, context.Canceled)

	status := s.Status()
	assert.GreaterOrEqual(t, status.LastVerifiedALFN, uint32(800000001))
	assert.Less(t, status.LastVerifiedALFN, status.ALFN)
}

// Run under -race: nothing outside the frame loop may touch the encoder
// once Start has launched it.
func TestStartRestarts(t *testing.T) {
	opts := testOptions()
	opts.FrameInterval = time.Microsecond
	opts.Loopback = true

	for i := 0; i < 20; i++ {
		s, err := NewStation(opts, WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
		err = s.Start(ctx)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		status := s.Status()
		assert.Equal(t, opts.StartALFN+uint32(status.FramesEmitted), status.ALFN)
	}
}
