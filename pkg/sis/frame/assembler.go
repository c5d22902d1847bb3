package frame

// Assembler takes demodulated bits and assembles them into blocks.
type Assembler interface {
	// Receive expects a buffer of 1s and 0s that correspond to the bits in a block.
	// Each byte should only contain 1 bit.  There is no bit packing.
	Receive([]byte)
}
