package sis

import "errors"

var (
	ErrInvalidRequestLength = errors.New("invalid request length")
	ErrInvalidNameLength    = errors.New("invalid station name length")
	ErrInvalidNameChar      = errors.New("station name character outside alphabet")
	ErrShortBlock           = errors.New("short block")
	ErrChecksumMismatch     = errors.New("checksum mismatch")
)
