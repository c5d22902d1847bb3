package sis

// Field values for the FOX channel, from NRSC-5 1020s (SIS).
const (
	BlocksPerFrame = 16
	NameLength     = 32

	PIDSFormatted uint32 = 0
	NoExtension   uint32 = 0

	StationNameLong uint32 = 2
	ExtensionFM     uint32 = 1

	TimeNotLocked uint32 = 0
	TimeLocked    uint32 = 1
)

// Field widths in bits.
const (
	flagBits        = 1
	typeTagBits     = 32
	charBits        = 5
	extensionBits   = 2
	reservedBits    = 1
	alfnSliceBits   = 2
	nameSubBlockLen = typeTagBits + NameLength*charBits + extensionBits

	// MinBlockDataBits is the length every block is padded up to before
	// the trailing timing fields.
	MinBlockDataBits = 64

	CRCBits         = 12
	CRCPoly  uint16 = 0xD010
	CRCMask  uint16 = 0x955
	crcFlush        = 16
)

// Derived layout.
const (
	blockHeadBits = 2*flagBits + nameSubBlockLen
	paddedBits    = max(blockHeadBits, MinBlockDataBits)

	// BlockDataBits is the number of bits covered by the checksum.
	BlockDataBits = paddedBits + reservedBits + flagBits + alfnSliceBits
	BlockBits     = BlockDataBits + CRCBits
	FrameBits     = BlockBits * BlocksPerFrame
)
