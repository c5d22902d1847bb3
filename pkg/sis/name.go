package sis

import (
	"fmt"
	"strings"
)

const (
	codeSpace    = 26
	codeReserved = 31
)

// EncodeChar5 maps a station name character onto the 5-bit SIS alphabet.
// Characters outside the alphabet map to the space code.
func EncodeChar5(c byte) uint32 {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint32(c - 'A')
	case c >= 'a' && c <= 'z':
		return uint32(c - 'a')
	}
	switch c {
	case '?':
		return 27
	case '-':
		return 28
	case '*':
		return 29
	case '$':
		return 30
	default:
		return codeSpace
	}
}

// DecodeChar5 is the inverse of EncodeChar5. The reserved code decodes as a space.
func DecodeChar5(code uint32) byte {
	switch {
	case code < codeSpace:
		return byte('A' + code)
	case code == 27:
		return '?'
	case code == 28:
		return '-'
	case code == 29:
		return '*'
	case code == 30:
		return '$'
	default:
		return ' '
	}
}

func inAlphabet(c byte) bool {
	return c == ' ' || EncodeChar5(c) != codeSpace
}

// PadStationName upper-cases name and pads it with spaces to NameLength.
// Longer names are truncated.
func PadStationName(name string) string {
	name = strings.ToUpper(name)
	if len(name) >= NameLength {
		return name[:NameLength]
	}
	return name + strings.Repeat(" ", NameLength-len(name))
}

func validateStationName(name string, strict bool) error {
	if len(name) != NameLength {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidNameLength, len(name), NameLength)
	}
	if !strict {
		return nil
	}
	for i := 0; i < len(name); i++ {
		if !inAlphabet(name[i]) {
			return fmt.Errorf("%w: %q at position %d", ErrInvalidNameChar, name[i], i)
		}
	}
	return nil
}

func (w *bitWriter) writeStationNameLong(codes *[NameLength]uint32) {
	w.writeInt(StationNameLong, typeTagBits)
	for _, c := range codes {
		w.writeInt(c, charBits)
	}
	w.writeInt(ExtensionFM, extensionBits)
}
