package sis

import "fmt"

// FoxEncoder produces the SIS FOX bitstream for one station. It is not
// safe for concurrent use.
type FoxEncoder struct {
	name  string
	codes [NameLength]uint32
	alfn  uint32
}

type EncoderOption func(o *encoderOptions)

type encoderOptions struct {
	strict bool
}

// WithStrictAlphabet rejects names containing characters that would
// otherwise be sent as spaces.
func WithStrictAlphabet() EncoderOption {
	return func(o *encoderOptions) {
		o.strict = true
	}
}

func NewFoxEncoder(name string, alfn uint32, opts ...EncoderOption) (*FoxEncoder, error) {
	var o encoderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateStationName(name, o.strict); err != nil {
		return nil, err
	}

	e := &FoxEncoder{
		name: name,
		alfn: alfn,
	}
	for i := 0; i < NameLength; i++ {
		e.codes[i] = EncodeChar5(name[i])
	}
	return e, nil
}

func (e *FoxEncoder) StationName() string {
	return e.name
}

// ALFN returns the frame number the next frame will carry.
func (e *FoxEncoder) ALFN() uint32 {
	return e.alfn
}

func (e *FoxEncoder) BlockBits() int {
	return BlockBits
}

func (e *FoxEncoder) FrameBits() int {
	return FrameBits
}

func (e *FoxEncoder) PredictOutputSize(frames int) int {
	return frames * FrameBits
}

// Work fills out with whole frames, one bit per byte, and returns the
// number of bits written. len(out) must be a multiple of FrameBits.
func (e *FoxEncoder) Work(out []byte) (int, error) {
	if len(out)%FrameBits != 0 {
		return 0, fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidRequestLength, len(out), FrameBits)
	}

	for off := 0; off < len(out); off += FrameBits {
		e.writeFrame(out[off : off+FrameBits])
		e.alfn++
	}
	return len(out), nil
}

// EncodeFrame returns the next frame in a new buffer.
func (e *FoxEncoder) EncodeFrame() []byte {
	out := make([]byte, FrameBits)
	e.writeFrame(out)
	e.alfn++
	return out
}

func (e *FoxEncoder) writeFrame(frame []byte) {
	for block := 0; block < BlocksPerFrame; block++ {
		start := block * BlockBits
		e.writeBlock(frame[start:start+BlockBits], block)
	}
}

func (e *FoxEncoder) writeBlock(buf []byte, block int) {
	w := newBitWriter(buf)

	w.writeBit(PIDSFormatted)
	w.writeBit(NoExtension)
	w.writeStationNameLong(&e.codes)

	for w.pos < MinBlockDataBits {
		w.writeBit(0)
	}
	w.writeBit(0) // reserved
	w.writeBit(TimeNotLocked)
	w.writeInt((e.alfn>>(uint(block)*2))&0x3, alfnSliceBits)
	w.writeInt(uint32(CRC12(buf[:w.pos])), CRCBits)
}
