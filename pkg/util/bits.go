package util

// PackBits packs one-bit-per-byte input into bytes, MSB first. A short
// final byte is zero padded.
func PackBits(bits []byte) []byte {
	ret := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		ret[i/8] |= (b & 1) << (7 - uint(i%8))
	}
	return ret
}

// UnpackBits expands the first n bits of packed, MSB first.
func UnpackBits(packed []byte, n int) []byte {
	if limit := len(packed) * 8; n > limit {
		n = limit
	}
	ret := make([]byte, n)
	for i := range ret {
		ret[i] = (packed[i/8] >> (7 - uint(i%8))) & 1
	}
	return ret
}
