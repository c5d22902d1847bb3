package station

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/foxcast/pkg/sis"
	"github.com/norasector/foxcast/pkg/sis/frame"
	"github.com/norasector/foxcast/pkg/sis/frame/fox"
	"github.com/norasector/foxcast/pkg/util"
	"github.com/norasector/foxcast/pkg/viz"
	"github.com/norasector/turbine-common/types"
	"golang.org/x/sync/errgroup"
)

type Station struct {
	encoder      *sis.FoxEncoder
	opts         Options
	writeAPI     api.WriteAPI
	statusServer *viz.Server
	framePlot    *viz.BitPlotter
	logger       zerolog.Logger
	symbolRate   int

	loopbackChan chan *frame.EncodedFrame
	updateChan   chan fox.FrameUpdate

	mu        sync.RWMutex
	status    Status
	lastFrame []byte
	cancel    context.CancelFunc
}

type StationOption func(s *Station) error

func WithInfluxDB(writeAPI api.WriteAPI) StationOption {
	return func(s *Station) error {
		s.writeAPI = writeAPI
		return nil
	}
}

// WithStatusServer publishes Status and a plot of the latest frame on srv.
func WithStatusServer(srv *viz.Server) StationOption {
	return func(s *Station) error {
		s.statusServer = srv
		return nil
	}
}

func WithLogger(logger zerolog.Logger) StationOption {
	return func(s *Station) error {
		s.logger = logger
		return nil
	}
}

func NewStation(options Options, opts ...StationOption) (*Station, error) {
	s := &Station{
		opts:         options,
		writeAPI:     &util.MockWriteAPI{}, // overwritten with option
		loopbackChan: make(chan *frame.EncodedFrame, 4),
		updateChan:   make(chan fox.FrameUpdate, 4),
		logger:       log.Logger,
		cancel:       func() {},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.opts.FrameInterval <= 0 {
		s.opts.FrameInterval = util.FramePeriod
	}

	var encOpts []sis.EncoderOption
	if s.opts.StrictAlphabet {
		encOpts = append(encOpts, sis.WithStrictAlphabet())
	}
	enc, err := sis.NewFoxEncoder(s.opts.StationName, s.opts.StartALFN, encOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating fox encoder: %w", err)
	}
	s.encoder = enc
	s.symbolRate = int(float64(sis.FrameBits) / util.FramePeriod.Seconds())

	s.status = Status{
		StationName: enc.StationName(),
		ALFN:        enc.ALFN(),
		Loopback:    s.opts.Loopback,
	}

	if s.statusServer != nil {
		s.framePlot = viz.NewBitPlotter("frame", 2*sis.BlockBits)
		s.statusServer.Register(s.framePlot)
		s.statusServer.SetStatusFunc(func() interface{} {
			return s.Status()
		})
	}

	return s, nil
}

func (s *Station) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastFrame returns a copy of the most recently emitted frame.
func (s *Station) LastFrame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.lastFrame...)
}

func (s *Station) Stop() error {
	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()

	cancel()
	if s.statusServer != nil {
		s.statusServer.Stop(context.TODO())
	}
	return nil
}

func (s *Station) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	// The frame loop owns the encoder once it starts.
	startALFN := s.encoder.ALFN()

	eg, ctx := errgroup.WithContext(ctx)

	if s.statusServer != nil {
		eg.Go(func() error {
			return s.statusServer.Run(ctx)
		})
	}

	for _, output := range s.opts.Outputs {
		thisOutput := output
		eg.Go(func() error {
			return thisOutput.Start(ctx)
		})
	}

	if s.opts.Loopback {
		s.startLoopback(ctx, eg)
	}

	eg.Go(func() error {
		return s.runFrames(ctx)
	})

	s.logger.Info().
		Str("station_name", s.encoder.StationName()).
		Uint32("alfn", startALFN).
		Dur("frame_interval", s.opts.FrameInterval).
		Int("outputs", len(s.opts.Outputs)).
		Msg("Starting")

	return eg.Wait()
}

func (s *Station) runFrames(ctx context.Context) error {
	tick := time.NewTicker(s.opts.FrameInterval)
	defer tick.Stop()

	for {
		if err := s.emitFrame(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (s *Station) emitFrame(ctx context.Context) error {
	start := time.Now()
	alfn := s.encoder.ALFN()

	bits := make([]byte, sis.FrameBits)
	written, encodeDuration, err := util.TimeWorkMicroseconds(func() (int, error) {
		return s.encoder.Work(bits)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.status.FramesEmitted++
	segNum := s.status.FramesEmitted
	s.mu.Unlock()

	encoded := &frame.EncodedFrame{
		ALFN:      alfn,
		Timestamp: start.UTC(),
		Segment: &types.SegmentBinaryBytes{
			SymbolRate:    s.symbolRate,
			Data:          bits,
			SegmentNumber: segNum,
		},
	}

	skippedOutputs := 0
	for _, output := range s.opts.Outputs {
		select {
		case output.Receive() <- encoded:
			// We will not wait on blocked channels.
		default:
			skippedOutputs++
		}
	}

	if s.opts.Loopback {
		select {
		case s.loopbackChan <- encoded:
		default:
			s.logger.Debug().Uint32("alfn", alfn).Msg("loopback busy, frame not monitored")
		}
	}

	if s.framePlot != nil {
		s.framePlot.AppendBits(bits[:2*sis.BlockBits])
	}

	s.mu.Lock()
	s.status.ALFN = s.encoder.ALFN()
	s.status.SkippedOutputs += skippedOutputs
	s.status.LastFrameTime = encoded.Timestamp
	s.lastFrame = bits
	s.mu.Unlock()

	if skippedOutputs > 0 {
		s.logger.Warn().Uint32("alfn", alfn).Int("skipped_outputs", skippedOutputs).Msg("outputs not keeping up")
	}

	go s.writeAPI.WritePoint(influxdb2.NewPoint("sis.frame.encoded",
		map[string]string{
			"station": s.encoder.StationName(),
		},
		map[string]interface{}{
			"alfn":            int64(alfn),
			"bits_written":    written,
			"encode_duration": encodeDuration,
			"skipped_outputs": skippedOutputs,
		}, start))

	return ctx.Err()
}
