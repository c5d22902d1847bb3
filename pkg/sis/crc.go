package sis

// CRC12 computes the SIS block checksum over bits, one bit per byte in
// emission order.
//
// 1020s section 4.10 gives the wrong generator. The checksum actually
// sent is a 16-bit CRC with g(x) = x^16 + x^11 + x^3 + x + 1, fed with
// the block back to front, truncated to 12 bits and masked with 0x955.
func CRC12(bits []byte) uint16 {
	var reg uint16

	for i := len(bits) - 1; i >= 0; i-- {
		low := reg & 1
		reg >>= 1
		reg ^= uint16(bits[i]&1) << 15
		if low == 1 {
			reg ^= CRCPoly
		}
	}
	for i := 0; i < crcFlush; i++ {
		low := reg & 1
		reg >>= 1
		if low == 1 {
			reg ^= CRCPoly
		}
	}

	return (reg ^ CRCMask) & (1<<CRCBits - 1)
}
