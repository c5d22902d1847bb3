package sis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const alphabetName = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456"

func nameGen() *rapid.Generator[string] {
	chars := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcxyz?-*$ 0129.")
	return rapid.Custom(func(t *rapid.T) string {
		return string(rapid.SliceOfN(rapid.SampledFrom(chars), NameLength, NameLength).Draw(t, "name"))
	})
}

func TestEndToEnd(t *testing.T) {
	enc, err := NewFoxEncoder(alphabetName, 800000000)
	require.NoError(t, err)

	out := make([]byte, enc.FrameBits())
	n, err := enc.Work(out)
	require.NoError(t, err)
	assert.Equal(t, FrameBits, n)
	assert.Equal(t, uint32(800000001), enc.ALFN())

	blocks, err := ParseFrame(out)
	require.NoError(t, err)
	require.Len(t, blocks, BlocksPerFrame)

	slices := make([]uint8, 0, BlocksPerFrame)
	for i, blk := range blocks {
		start := i * BlockBits
		assert.Equal(t, byte(PIDSFormatted), out[start], "block %d pids bit", i)
		assert.Equal(t, byte(NoExtension), out[start+1], "block %d extension bit", i)
		assert.Equal(t, byte(0), out[start+paddedBits], "block %d reserved bit", i)

		assert.True(t, blk.Valid())
		assert.Equal(t, uint32(PIDSFormatted), blk.PIDSFormatted)
		assert.Equal(t, uint32(NoExtension), blk.Extension)
		assert.Zero(t, blk.Reserved)
		assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ      ", blk.Name)
		assert.Equal(t, StationNameLong, blk.MessageType)
		assert.Equal(t, ExtensionFM, blk.ExtensionCode)
		assert.False(t, blk.TimeLocked)
		slices = append(slices, blk.ALFNSlice)
	}
	assert.Equal(t, uint32(800000000), ReconstructALFN(slices))

	assert.Equal(t, uint16(0x1f2), blocks[0].CRC)
	assert.Equal(t, uint16(0x81e), blocks[5].CRC)
	assert.Equal(t, uint16(0x4e8), blocks[8].CRC)
}

func TestWorkBits(t *testing.T) {
	enc, err := NewFoxEncoder(alphabetName, 3)
	require.NoError(t, err)

	out := make([]byte, FrameBits*3)
	for i := range out {
		out[i] = 0xaa
	}
	_, err = enc.Work(out)
	require.NoError(t, err)

	for i, b := range out {
		require.LessOrEqual(t, b, byte(1), "bit %d", i)
	}
}

func TestWorkInvalidLength(t *testing.T) {
	enc, err := NewFoxEncoder(alphabetName, 42)
	require.NoError(t, err)

	for _, n := range []int{1, BlockBits, FrameBits - 1, FrameBits + 1} {
		out := make([]byte, n)
		written, err := enc.Work(out)
		assert.ErrorIs(t, err, ErrInvalidRequestLength)
		assert.Zero(t, written)
		assert.Equal(t, uint32(42), enc.ALFN())
		assert.Equal(t, make([]byte, n), out)
	}

	written, err := enc.Work(nil)
	assert.NoError(t, err)
	assert.Zero(t, written)
	assert.Equal(t, uint32(42), enc.ALFN())
}

func TestALFNWraps(t *testing.T) {
	enc, err := NewFoxEncoder(alphabetName, 0xffffffff)
	require.NoError(t, err)

	blocks, err := ParseFrame(enc.EncodeFrame())
	require.NoError(t, err)
	for _, blk := range blocks {
		assert.Equal(t, uint8(3), blk.ALFNSlice)
	}
	assert.Equal(t, uint32(0), enc.ALFN())
}

func TestDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := nameGen().Draw(t, "name")
		alfn := rapid.Uint32().Draw(t, "alfn")
		k := rapid.IntRange(1, 5).Draw(t, "frames")

		batch, err := NewFoxEncoder(name, alfn)
		if err != nil {
			t.Fatal(err)
		}
		single, _ := NewFoxEncoder(name, alfn)

		all := make([]byte, batch.PredictOutputSize(k))
		if _, err := batch.Work(all); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < k; i++ {
			frame := make([]byte, FrameBits)
			if _, err := single.Work(frame); err != nil {
				t.Fatal(err)
			}
			if string(frame) != string(all[i*FrameBits:(i+1)*FrameBits]) {
				t.Fatalf("frame %d differs between batch and single calls", i)
			}
		}

		if batch.ALFN() != alfn+uint32(k) || single.ALFN() != alfn+uint32(k) {
			t.Fatalf("alfn: batch %d single %d, want %d", batch.ALFN(), single.ALFN(), alfn+uint32(k))
		}
	})
}

func TestBlocksVerify(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := nameGen().Draw(t, "name")
		alfn := rapid.Uint32().Draw(t, "alfn")
		k := rapid.IntRange(1, 3).Draw(t, "frames")

		enc, err := NewFoxEncoder(name, alfn)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]byte, k*FrameBits)
		if _, err := enc.Work(out); err != nil {
			t.Fatal(err)
		}

		for f := 0; f < k; f++ {
			frame := out[f*FrameBits : (f+1)*FrameBits]
			slices := make([]uint8, BlocksPerFrame)
			for b := 0; b < BlocksPerFrame; b++ {
				blk := frame[b*BlockBits : (b+1)*BlockBits]
				r := &bitReader{buf: blk, pos: BlockDataBits}
				if got, want := uint16(r.readInt(CRCBits)), referenceCRC12(blk[:BlockDataBits]); got != want {
					t.Fatalf("frame %d block %d: crc %03x, want %03x", f, b, got, want)
				}
				r.pos = BlockDataBits - alfnSliceBits
				slices[b] = uint8(r.readInt(alfnSliceBits))
				if want := uint8((alfn + uint32(f)) >> (2 * b) & 3); slices[b] != want {
					t.Fatalf("frame %d block %d: slice %d, want %d", f, b, slices[b], want)
				}
			}
			if got := ReconstructALFN(slices); got != alfn+uint32(f) {
				t.Fatalf("frame %d: reconstructed %d, want %d", f, got, alfn+uint32(f))
			}
		}
	})
}

func TestParseBlockCorrupt(t *testing.T) {
	enc, err := NewFoxEncoder(alphabetName, 7)
	require.NoError(t, err)
	frame := enc.EncodeFrame()

	for _, pos := range []int{0, 40, 199, 205} {
		blk := append([]byte(nil), frame[:BlockBits]...)
		blk[pos] ^= 1
		_, err := ParseBlock(blk)
		assert.ErrorIs(t, err, ErrChecksumMismatch, "flipped bit %d", pos)
	}

	_, err = ParseBlock(frame[:BlockBits-1])
	assert.ErrorIs(t, err, ErrShortBlock)
}
