package fox

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/foxcast/pkg/sis"
	"github.com/rs/zerolog"
)

// FrameUpdate is emitted once per fully received, aligned frame.
type FrameUpdate struct {
	ALFN        uint32
	StationName string
	Continuous  bool
	Timestamp   time.Time
}

// FoxProcessor rebuilds frame numbers from the ALFN slices of
// consecutive blocks.
//
// Block position within a frame is not sent, so alignment is found by
// looking for an offset at which two consecutive 16-block windows decode
// to consecutive frame numbers. Any other offset yields a difference of
// at least 4.
type FoxProcessor struct {
	packetChan <-chan BlockPacket
	updateChan chan<- FrameUpdate
	logger     zerolog.Logger
	writeAPI   api.WriteAPI

	epoch    int
	nextSeq  uint64
	window   []uint8
	aligned  bool
	frame    []uint8
	lastALFN uint32
	haveLast bool
	name     string
}

func NewProcessor(packetChan <-chan BlockPacket, updateChan chan<- FrameUpdate, writeAPI api.WriteAPI, logger zerolog.Logger) *FoxProcessor {
	return &FoxProcessor{
		packetChan: packetChan,
		updateChan: updateChan,
		writeAPI:   writeAPI,
		logger:     logger,
	}
}

func (s *FoxProcessor) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case packet := <-s.packetChan:
			update, ok := s.processPacket(packet)
			if !ok {
				continue
			}

			go s.writeAPI.WritePoint(influxdb2.NewPoint("sis.block.verified",
				map[string]string{
					"station": update.StationName,
				},
				map[string]interface{}{
					"alfn":       int64(update.ALFN),
					"continuous": update.Continuous,
				}, update.Timestamp))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case s.updateChan <- update:
			}
		}
	}
}

func (s *FoxProcessor) reset(epoch int) {
	s.epoch = epoch
	s.window = s.window[:0]
	s.frame = s.frame[:0]
	s.aligned = false
}

func (s *FoxProcessor) processPacket(packet BlockPacket) (FrameUpdate, bool) {
	if packet.Epoch != s.epoch || packet.Sequence != s.nextSeq {
		if s.aligned {
			s.logger.Debug().Int("epoch", packet.Epoch).Uint64("seq", packet.Sequence).Msg("fox block sequence broken")
		}
		s.reset(packet.Epoch)
	}
	s.nextSeq = packet.Sequence + 1

	if packet.Block.Name != s.name {
		if s.name != "" {
			s.logger.Info().Str("old", s.name).Str("new", packet.Block.Name).Msg("station name changed")
		}
		s.name = packet.Block.Name
	}

	if !s.aligned {
		s.window = append(s.window, packet.Block.ALFNSlice)
		return s.align(packet.Timestamp)
	}

	s.frame = append(s.frame, packet.Block.ALFNSlice)
	if len(s.frame) < sis.BlocksPerFrame {
		return FrameUpdate{}, false
	}

	alfn := sis.ReconstructALFN(s.frame)
	s.frame = s.frame[:0]
	continuous := s.haveLast && alfn == s.lastALFN+1
	if s.haveLast && !continuous {
		s.logger.Warn().Uint32("alfn", alfn).Uint32("last_alfn", s.lastALFN).Msg("alfn discontinuity")
	}
	s.lastALFN = alfn
	s.haveLast = true

	return FrameUpdate{
		ALFN:        alfn,
		StationName: s.name,
		Continuous:  continuous,
		Timestamp:   packet.Timestamp,
	}, true
}

func (s *FoxProcessor) align(ts time.Time) (FrameUpdate, bool) {
	const n = sis.BlocksPerFrame

	for o := 0; o < n && o+2*n <= len(s.window); o++ {
		first := sis.ReconstructALFN(s.window[o : o+n])
		second := sis.ReconstructALFN(s.window[o+n : o+2*n])
		if second != first+1 {
			continue
		}

		s.aligned = true
		s.frame = append(s.frame[:0], s.window[o+2*n:]...)
		s.window = s.window[:0]
		s.lastALFN = second
		s.haveLast = true
		s.logger.Debug().Int("offset", o).Uint32("alfn", second).Msg("fox frame alignment found")

		return FrameUpdate{
			ALFN:        second,
			StationName: s.name,
			Continuous:  true,
			Timestamp:   ts,
		}, true
	}

	if len(s.window) >= 3*n {
		s.window = append(s.window[:0], s.window[len(s.window)-(2*n-1):]...)
	}
	return FrameUpdate{}, false
}
