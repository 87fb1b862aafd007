package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/region/errs"
)

// CompressionType identifies a compression scheme applied to chunk payloads.
//
// Only gzip and zlib have an on-disk id. The remaining schemes have no persisted
// id and are only valid as the working scheme of an in-memory region.
type CompressionType uint8

const (
	CompressionGzip CompressionType = 0x1 // CompressionGzip represents gzip (RFC 1952) compression, on-disk id 1.
	CompressionZlib CompressionType = 0x2 // CompressionZlib represents zlib (RFC 1950) compression, on-disk id 2.

	CompressionNone CompressionType = 0x80 // CompressionNone represents no compression (working scheme only).
	CompressionLZ4  CompressionType = 0x81 // CompressionLZ4 represents LZ4 block compression (working scheme only).
	CompressionS2   CompressionType = 0x82 // CompressionS2 represents S2 compression (working scheme only).
	CompressionZstd CompressionType = 0x83 // CompressionZstd represents Zstandard compression (working scheme only).
)

func (c CompressionType) String() string {
	switch c {
	case CompressionGzip:
		return "Gzip"
	case CompressionZlib:
		return "Zlib"
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionS2:
		return "S2"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// Persistable reports whether the scheme has an on-disk id.
func (c CompressionType) Persistable() bool {
	return c == CompressionGzip || c == CompressionZlib
}

// Valid reports whether c is a known scheme.
func (c CompressionType) Valid() bool {
	switch c {
	case CompressionGzip, CompressionZlib, CompressionNone, CompressionLZ4, CompressionS2, CompressionZstd:
		return true
	default:
		return false
	}
}

// ID returns the 1-byte on-disk id of the scheme.
//
// Returns errs.ErrInvalidArgument for schemes without a persisted id.
func (c CompressionType) ID() (byte, error) {
	if !c.Persistable() {
		return 0, fmt.Errorf("%w: compression %s has no on-disk id", errs.ErrInvalidArgument, c)
	}

	return byte(c), nil
}

// FromID maps an on-disk compression id back to its scheme.
//
// Returns errs.ErrUnknownCompression (a format error) for any id other than 1 or 2.
func FromID(id byte) (CompressionType, error) {
	switch c := CompressionType(id); c {
	case CompressionGzip, CompressionZlib:
		return c, nil
	default:
		return 0, fmt.Errorf("%w: id %d", errs.ErrUnknownCompression, id)
	}
}

// ParseCompressionType parses a scheme name, case-insensitively.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "gzip":
		return CompressionGzip, nil
	case "zlib":
		return CompressionZlib, nil
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "s2":
		return CompressionS2, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", errs.ErrInvalidArgument, s)
	}
}
