package sis

// bitWriter walks forward through a caller-owned buffer of
// one-bit-per-byte values.
type bitWriter struct {
	buf []byte
	pos int
}

func newBitWriter(buf []byte) *bitWriter {
	return &bitWriter{buf: buf}
}

// writeBit panics past the end of the buffer; callers size buffers
// from FrameBits before writing.
func (w *bitWriter) writeBit(b uint32) {
	w.buf[w.pos] = byte(b & 1)
	w.pos++
}

// writeInt writes the low n bits of v, MSB first.
func (w *bitWriter) writeInt(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit(v >> uint(i))
	}
}

// bitReader is the decoding counterpart of bitWriter.
type bitReader struct {
	buf []byte
	pos int
}

func (r *bitReader) readInt(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | uint32(r.buf[r.pos]&1)
		r.pos++
	}
	return v
}
