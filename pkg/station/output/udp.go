package output

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/foxcast/pkg/sis/frame"
	"github.com/norasector/foxcast/pkg/station/config"
	"github.com/norasector/foxcast/pkg/util"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protowire"
)

const receiveChannels = 8

// Field numbers of the frame datagram message.
const (
	fieldALFN          protowire.Number = 1
	fieldSegmentNumber protowire.Number = 2
	fieldBits          protowire.Number = 3
	fieldBitCount      protowire.Number = 4
)

// FrameUDPOutput sends each frame as one datagram: a little-endian
// uint16 length followed by a protobuf-encoded message carrying the
// ALFN and the packed frame bits.
type FrameUDPOutput struct {
	dests    []config.OutputDestination
	recvChan chan *frame.EncodedFrame
	metrics  api.WriteAPI
	logger   zerolog.Logger
}

func NewFrameUDPOutput(dests []config.OutputDestination, metrics api.WriteAPI, logger zerolog.Logger) *FrameUDPOutput {
	return &FrameUDPOutput{
		dests:    dests,
		recvChan: make(chan *frame.EncodedFrame, receiveChannels),
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *FrameUDPOutput) Receive() chan<- *frame.EncodedFrame {
	return s.recvChan
}

// MarshalFrame encodes encoded as the datagram payload.
func MarshalFrame(encoded *frame.EncodedFrame) ([]byte, error) {
	var msg []byte
	msg = protowire.AppendTag(msg, fieldALFN, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(encoded.ALFN))
	msg = protowire.AppendTag(msg, fieldSegmentNumber, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(encoded.Segment.SegmentNumber))
	msg = protowire.AppendTag(msg, fieldBits, protowire.BytesType)
	msg = protowire.AppendBytes(msg, util.PackBits(encoded.Segment.Data))
	msg = protowire.AppendTag(msg, fieldBitCount, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(len(encoded.Segment.Data)))

	if len(msg) > 0xffff {
		return nil, fmt.Errorf("frame message too large: %d bytes", len(msg))
	}

	var msgBuf bytes.Buffer
	if err := binary.Write(&msgBuf, binary.LittleEndian, uint16(len(msg))); err != nil {
		return nil, err
	}
	msgBuf.Write(msg)
	return msgBuf.Bytes(), nil
}

// DecodedFrame is the receiving side of MarshalFrame.
type DecodedFrame struct {
	ALFN          uint32
	SegmentNumber int
	Bits          []byte
}

func UnmarshalFrame(datagram []byte) (*DecodedFrame, error) {
	if len(datagram) < 2 {
		return nil, fmt.Errorf("short datagram: %d bytes", len(datagram))
	}
	size := int(binary.LittleEndian.Uint16(datagram))
	msg := datagram[2:]
	if len(msg) != size {
		return nil, fmt.Errorf("length prefix %d, got %d bytes", size, len(msg))
	}

	var (
		ret      DecodedFrame
		packed   []byte
		bitCount int
	)
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		msg = msg[n:]

		switch {
		case num == fieldBits && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(msg)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			packed = v
			msg = msg[n:]
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			switch num {
			case fieldALFN:
				ret.ALFN = uint32(v)
			case fieldSegmentNumber:
				ret.SegmentNumber = int(v)
			case fieldBitCount:
				bitCount = int(v)
			}
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			msg = msg[n:]
		}
	}

	ret.Bits = util.UnpackBits(packed, bitCount)
	return &ret, nil
}

func (s *FrameUDPOutput) Start(ctx context.Context) error {
	destAddrs := make([]*net.UDPAddr, 0, len(s.dests))
	for _, dest := range s.dests {
		ips, err := net.LookupIP(dest.Host)
		if err != nil {
			return err
		}
		if len(ips) == 0 {
			return fmt.Errorf("no IPs returned for %s", dest.Host)
		}

		destAddr := &net.UDPAddr{IP: ips[0], Port: dest.Port}
		destAddrs = append(destAddrs, destAddr)
		s.logger.Info().IPAddr("dest_ip", destAddr.IP).Int("port", dest.Port).Msg("frame output starting")
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case encoded := <-s.recvChan:
			datagram, err := MarshalFrame(encoded)
			if err != nil {
				s.logger.Warn().Err(err).Uint32("alfn", encoded.ALFN).Msg("error marshaling frame")
				continue
			}

			sent := 0
			for _, destAddr := range destAddrs {
				if _, err := conn.WriteToUDP(datagram, destAddr); err != nil {
					s.logger.Error().Err(err).Str("dest", destAddr.String()).Msg("error writing")
					continue
				}
				sent++
			}

			go s.metrics.WritePoint(influxdb2.NewPoint("sis.frame.sent",
				map[string]string{
					"channel_type": "fox",
					"destinations": strconv.Itoa(len(destAddrs)),
				},
				map[string]interface{}{
					"datagram_length": len(datagram),
					"sent":            sent,
					"dropped":         len(destAddrs) - sent,
				}, time.Now()))
		}
	}
}
