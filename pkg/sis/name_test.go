package sis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeChar5(t *testing.T) {
	tests := []struct {
		c    byte
		want uint32
	}{
		{'A', 0},
		{'Z', 25},
		{'a', 0},
		{'z', 25},
		{'?', 27},
		{'-', 28},
		{'*', 29},
		{'$', 30},
		{' ', 26},
		{'1', 26},
		{'.', 26},
		{0xff, 26},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeChar5(tt.c), "char %q", tt.c)
	}
}

func TestEncodeChar5NeverReserved(t *testing.T) {
	for c := 0; c < 256; c++ {
		assert.NotEqual(t, uint32(codeReserved), EncodeChar5(byte(c)))
	}
}

func TestDecodeChar5(t *testing.T) {
	for code := uint32(0); code < 31; code++ {
		assert.Equal(t, code, EncodeChar5(DecodeChar5(code)), "code %d", code)
	}
	assert.Equal(t, byte(' '), DecodeChar5(codeReserved))
}

func TestStationNameCodes(t *testing.T) {
	name := PadStationName("TESTSTATION")
	require.Len(t, name, NameLength)

	enc, err := NewFoxEncoder(name, 0)
	require.NoError(t, err)

	frame := enc.EncodeFrame()
	r := &bitReader{buf: frame, pos: 2 + typeTagBits}

	want := []uint32{19, 4, 18, 19, 18, 19, 0, 19, 8, 14, 13}
	for len(want) < NameLength {
		want = append(want, 26)
	}
	for i, code := range want {
		assert.Equal(t, code, r.readInt(charBits), "position %d", i)
	}
}

func TestPadStationName(t *testing.T) {
	assert.Equal(t, "WXYZ"+strings.Repeat(" ", 28), PadStationName("wxyz"))
	long := "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJ"
	assert.Equal(t, long[:NameLength], PadStationName(long))
}

func TestValidateStationName(t *testing.T) {
	_, err := NewFoxEncoder("SHORT", 0)
	assert.ErrorIs(t, err, ErrInvalidNameLength)

	name := "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456"
	_, err = NewFoxEncoder(name, 0)
	assert.NoError(t, err)

	_, err = NewFoxEncoder(name, 0, WithStrictAlphabet())
	assert.ErrorIs(t, err, ErrInvalidNameChar)

	_, err = NewFoxEncoder(PadStationName("WAMU-FM $?*"), 0, WithStrictAlphabet())
	assert.NoError(t, err)
}
