package sis

import "fmt"

// Block is one decoded FOX block.
type Block struct {
	PIDSFormatted uint32
	Extension     uint32
	MessageType   uint32
	NameCodes     [NameLength]uint32
	Name          string
	ExtensionCode uint32
	Reserved      uint32
	TimeLocked    bool
	ALFNSlice     uint8
	CRC           uint16
	ComputedCRC   uint16
}

func (b *Block) Valid() bool {
	return b.CRC == b.ComputedCRC
}

// ParseBlock decodes the first BlockBits bits of bits. A block whose
// checksum does not match is returned along with ErrChecksumMismatch.
func ParseBlock(bits []byte) (Block, error) {
	var blk Block
	if len(bits) < BlockBits {
		return blk, fmt.Errorf("%w: got %d bits, want %d", ErrShortBlock, len(bits), BlockBits)
	}

	r := &bitReader{buf: bits[:BlockBits]}
	blk.PIDSFormatted = r.readInt(flagBits)
	blk.Extension = r.readInt(flagBits)
	blk.MessageType = r.readInt(typeTagBits)

	name := make([]byte, NameLength)
	for i := range blk.NameCodes {
		blk.NameCodes[i] = r.readInt(charBits)
		name[i] = DecodeChar5(blk.NameCodes[i])
	}
	blk.Name = string(name)
	blk.ExtensionCode = r.readInt(extensionBits)

	r.pos = paddedBits
	blk.Reserved = r.readInt(reservedBits)
	blk.TimeLocked = r.readInt(flagBits) == TimeLocked
	blk.ALFNSlice = uint8(r.readInt(alfnSliceBits))
	blk.CRC = uint16(r.readInt(CRCBits))
	blk.ComputedCRC = CRC12(bits[:BlockDataBits])

	if !blk.Valid() {
		return blk, fmt.Errorf("%w: got %03x, computed %03x", ErrChecksumMismatch, blk.CRC, blk.ComputedCRC)
	}
	return blk, nil
}

// ParseFrame decodes the BlocksPerFrame blocks of one frame.
func ParseFrame(bits []byte) ([]Block, error) {
	if len(bits) < FrameBits {
		return nil, fmt.Errorf("%w: got %d bits, want %d", ErrShortBlock, len(bits), FrameBits)
	}
	blocks := make([]Block, 0, BlocksPerFrame)
	for i := 0; i < BlocksPerFrame; i++ {
		blk, err := ParseBlock(bits[i*BlockBits:])
		if err != nil {
			return blocks, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, blk)
	}
	return blocks, nil
}

// ReconstructALFN reassembles a frame number from the 2-bit slices of
// consecutive blocks, slices[i] holding bits 2i and 2i+1.
func ReconstructALFN(slices []uint8) uint32 {
	var alfn uint32
	for i, s := range slices {
		if i >= BlocksPerFrame {
			break
		}
		alfn |= uint32(s&0x3) << (uint(i) * 2)
	}
	return alfn
}
