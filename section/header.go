package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/region/errs"
)

// Header is the fixed 8 KiB prefix of a region file: the location table in
// sector 0 followed by the timestamp table in sector 1.
type Header struct {
	// Locations holds one entry per slot, indexed by ChunkIndex.
	Locations [SlotCount]Location
	// Timestamps holds one raw value per slot; its meaning belongs to the caller.
	Timestamps [SlotCount]int32
}

// Parse parses both tables from data.
//
// Parameters:
//   - data: byte slice holding the header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize if data is not HeaderSize bytes
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	for i := range SlotCount {
		loc := locationEntryOffset(i)
		h.Locations[i] = decodeLocation(data[loc : loc+LocationEntrySize])

		ts := timestampEntryOffset(i)
		h.Timestamps[i] = int32(binary.BigEndian.Uint32(data[ts : ts+TimestampEntrySize])) //nolint: gosec
	}

	return nil
}

// Bytes serializes the header into a new HeaderSize byte slice.
//
// Returns errs.ErrOutOfRange if any location cannot be encoded.
func (h *Header) Bytes() ([]byte, error) {
	b := make([]byte, HeaderSize)

	for i := range SlotCount {
		loc := locationEntryOffset(i)
		if err := h.Locations[i].Encode(b[loc : loc+LocationEntrySize]); err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}

		ts := timestampEntryOffset(i)
		binary.BigEndian.PutUint32(b[ts:ts+TimestampEntrySize], uint32(h.Timestamps[i])) //nolint: gosec
	}

	return b, nil
}

// Populated returns the number of slots with a present location.
func (h *Header) Populated() int {
	n := 0
	for _, loc := range h.Locations {
		if !loc.IsAbsent() {
			n++
		}
	}

	return n
}

// ParseHeader parses a Header from a byte slice.
//
// Parameters:
//   - data: byte slice starting with the header (must be at least HeaderSize bytes)
//
// Returns:
//   - *Header: parsed header
//   - error: errs.ErrTruncatedHeader if data is shorter than HeaderSize
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrTruncatedHeader, len(data))
	}

	h := &Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return nil, err
	}

	return h, nil
}
