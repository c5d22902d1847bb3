package fox

import (
	"context"
	"time"

	"github.com/norasector/foxcast/pkg/sis"
	"github.com/rs/zerolog"
)

// FoxMaxMisses is the number of consecutive bad blocks tolerated before
// the assembler drops sync and searches again.
const FoxMaxMisses = 3

// BlockPacket is a checksum-verified block. Sequence counts block
// positions since the assembler last acquired sync in Epoch, including
// positions whose block was rejected.
type BlockPacket struct {
	Block     sis.Block
	Epoch     int
	Sequence  uint64
	Timestamp time.Time
}

// FoxAssembler recovers block boundaries from a bitstream. FOX blocks
// carry no sync word, so lock is acquired on the first window that
// parses as a long station name block with a valid checksum.
type FoxAssembler struct {
	buf        []byte
	inSync     bool
	epoch      int
	seq        uint64
	misses     int
	outputChan chan<- BlockPacket
	logger     zerolog.Logger
	ctx        context.Context
}

func NewFoxAssembler(ctx context.Context, ch chan<- BlockPacket, logger zerolog.Logger) *FoxAssembler {
	return &FoxAssembler{
		outputChan: ch,
		logger:     logger,
		ctx:        ctx,
	}
}

func (s *FoxAssembler) InSync() bool {
	return s.inSync
}

func (s *FoxAssembler) Receive(bits []byte) {
	s.buf = append(s.buf, bits...)

	for {
		if !s.inSync && !s.acquire() {
			return
		}
		if len(s.buf) < sis.BlockBits {
			return
		}

		blk, err := sis.ParseBlock(s.buf[:sis.BlockBits])
		s.buf = s.buf[sis.BlockBits:]
		seq := s.seq
		s.seq++

		if err != nil {
			s.misses++
			s.logger.Debug().Err(err).Uint64("seq", seq).Msg("fox block rejected")
			if s.misses >= FoxMaxMisses {
				s.logger.Debug().Int("epoch", s.epoch).Msg("fox sync lost")
				s.inSync = false
			}
			continue
		}
		s.misses = 0

		select {
		case <-s.ctx.Done():
			return
		case s.outputChan <- BlockPacket{
			Block:     blk,
			Epoch:     s.epoch,
			Sequence:  seq,
			Timestamp: time.Now().UTC()}:
		}
	}
}

func (s *FoxAssembler) acquire() bool {
	for i := 0; i+sis.BlockBits <= len(s.buf); i++ {
		blk, err := sis.ParseBlock(s.buf[i : i+sis.BlockBits])
		if err != nil || blk.MessageType != sis.StationNameLong {
			continue
		}

		s.buf = s.buf[i:]
		s.inSync = true
		s.epoch++
		s.seq = 0
		s.misses = 0
		s.logger.Debug().Int("epoch", s.epoch).Int("skipped_bits", i).Msg("fox sync acquired")
		return true
	}

	if keep := sis.BlockBits - 1; len(s.buf) > keep {
		s.buf = append(s.buf[:0], s.buf[len(s.buf)-keep:]...)
	}
	return false
}
