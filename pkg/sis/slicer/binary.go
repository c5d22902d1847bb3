package slicer

// BinarySlicer takes input float32 NRZ symbols and returns a byte
// with value 0 or 1 depending on the sign of the value.
type BinarySlicer struct {
	invert bool
}

func NewBinarySlicer(invert bool) *BinarySlicer {
	return &BinarySlicer{
		invert: invert,
	}
}

func slice(f float32, invert bool) byte {
	var b byte
	if f >= 0 {
		b = 1
	}
	if invert {
		b ^= 1
	}
	return b
}

func (b *BinarySlicer) WorkBuffer(input []float32, output []byte) int {
	for i := 0; i < len(input); i++ {
		output[i] = slice(input[i], b.invert)
	}
	return len(input)
}

func (b *BinarySlicer) Work(items []float32) []byte {
	ret := make([]byte, len(items))
	b.WorkBuffer(items, ret)
	return ret
}

func (b *BinarySlicer) PredictOutputSize(inputSize int) int {
	return inputSize
}

// NRZMapper maps one-bit-per-byte input onto +/-amplitude symbols, the
// inverse of BinarySlicer.
type NRZMapper struct {
	amplitude float32
}

func NewNRZMapper(amplitude float32) *NRZMapper {
	return &NRZMapper{amplitude: amplitude}
}

func (m *NRZMapper) WorkBuffer(input []byte, output []float32) int {
	for i := 0; i < len(input); i++ {
		if input[i]&1 == 1 {
			output[i] = m.amplitude
		} else {
			output[i] = -m.amplitude
		}
	}
	return len(input)
}

func (m *NRZMapper) Work(bits []byte) []float32 {
	ret := make([]float32, len(bits))
	m.WorkBuffer(bits, ret)
	return ret
}

func (m *NRZMapper) PredictOutputSize(inputSize int) int {
	return inputSize
}
