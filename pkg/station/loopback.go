package station

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/norasector/foxcast/pkg/sis"
	"github.com/norasector/foxcast/pkg/sis/frame"
	"github.com/norasector/foxcast/pkg/sis/frame/fox"
	"github.com/norasector/foxcast/pkg/sis/slicer"
	"github.com/norasector/foxcast/pkg/util"
	"golang.org/x/sync/errgroup"
)

// loopback runs emitted frames through NRZ mapping, slicing and the FOX
// assembler so the station verifies its own output the way a receiver
// would.
type loopback struct {
	mapper    *slicer.NRZMapper
	slicer    *slicer.BinarySlicer
	assembler frame.Assembler
	proc      frame.Processor
}

func (s *Station) startLoopback(ctx context.Context, eg *errgroup.Group) {
	packets := make(chan fox.BlockPacket, 2*sis.BlocksPerFrame)

	lb := &loopback{
		mapper:    slicer.NewNRZMapper(1.0),
		slicer:    slicer.NewBinarySlicer(false),
		assembler: fox.NewFoxAssembler(ctx, packets, s.logger),
		proc:      fox.NewProcessor(packets, s.updateChan, s.writeAPI, s.logger),
	}

	eg.Go(func() error {
		return lb.proc.Start(ctx)
	})

	eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case encoded := <-s.loopbackChan:
				s.processLoopback(lb, encoded)
			}
		}
	})

	eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case update := <-s.updateChan:
				s.applyUpdate(update)
			}
		}
	})
}

func (s *Station) processLoopback(lb *loopback, encoded *frame.EncodedFrame) {
	start := time.Now()
	metrics := map[string]interface{}{
		"bits": len(encoded.Segment.Data),
	}

	var sliced []byte
	metrics["slicer_duration"] = util.TimeOperationMicroseconds(func() {
		sliced = lb.slicer.Work(lb.mapper.Work(encoded.Segment.Data))
	})
	metrics["assembler_duration"] = util.TimeOperationMicroseconds(func() {
		lb.assembler.Receive(sliced)
	})
	metrics["duration"] = time.Since(start).Microseconds()

	go s.writeAPI.WritePoint(influxdb2.NewPoint("sis.loopback.processed",
		map[string]string{
			"station": s.encoder.StationName(),
		},
		metrics, start))
}

func (s *Station) applyUpdate(update fox.FrameUpdate) {
	s.mu.Lock()
	s.status.VerifiedFrames++
	s.status.LastVerifiedALFN = update.ALFN
	if !update.Continuous {
		s.status.Discontinuities++
	}
	s.mu.Unlock()

	s.logger.Debug().
		Uint32("alfn", update.ALFN).
		Str("station_name", update.StationName).
		Msg("loopback frame verified")
}
