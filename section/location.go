package section

import (
	"fmt"

	"github.com/arloliu/region/errs"
)

// Location is a decoded location table entry: where a slot's payload lives and
// how much space is allocated for it. Both fields are in bytes and always
// multiples of SectorSize once decoded.
//
// On disk the entry is 4 bytes:
//
//	byte 0-2: sector offset (big-endian, unit 4096 bytes)
//	byte 3:   sector count (unit 4096 bytes)
//
// The zero Location means the slot is absent.
type Location struct {
	Offset int64
	Size   int64
}

// ParseLocation decodes a 4-byte location entry.
//
// Returns errs.ErrInvalidHeaderSize if data is shorter than LocationEntrySize.
func ParseLocation(data []byte) (Location, error) {
	if len(data) < LocationEntrySize {
		return Location{}, errs.ErrInvalidHeaderSize
	}

	return decodeLocation(data), nil
}

func decodeLocation(b []byte) Location {
	sectors := int64(b[0])<<16 | int64(b[1])<<8 | int64(b[2])

	return Location{
		Offset: sectors * SectorSize,
		Size:   int64(b[3]) * SectorSize,
	}
}

// IsAbsent reports whether the entry marks an empty slot.
func (l Location) IsAbsent() bool {
	return l.Offset == 0 && l.Size == 0
}

// End returns the first byte past the allocation.
func (l Location) End() int64 {
	return l.Offset + l.Size
}

// Sectors returns the sector offset and sector count of the entry.
func (l Location) Sectors() (offset, count int64) {
	return SectorsFor(l.Offset), SectorsFor(l.Size)
}

// Validate checks that a decoded, present entry points into the payload area.
//
// Returns errs.ErrInvalidLocation if the entry overlaps the header, has a zero
// sector count, or a sector count the encoder could never have produced.
func (l Location) Validate() error {
	if l.IsAbsent() {
		return nil
	}

	switch {
	case l.Offset < PayloadAreaOffset:
		return fmt.Errorf("%w: offset %d inside header", errs.ErrInvalidLocation, l.Offset)
	case l.Size == 0:
		return fmt.Errorf("%w: zero sector count at offset %d", errs.ErrInvalidLocation, l.Offset)
	case l.Size >= MaxSectorCount*SectorSize:
		return fmt.Errorf("%w: sector count %d", errs.ErrInvalidLocation, l.Size/SectorSize)
	default:
		return nil
	}
}

// Encode encodes the entry into dst, which must hold LocationEntrySize bytes.
//
// Offset and size are each rounded up to whole sectors. An allocator only ever
// produces sector-aligned offsets, so the offset rounding never changes a value
// written by this package; it is kept for bit-exact compatibility with files
// written by other implementations.
//
// Returns errs.ErrOutOfRange, with dst untouched, if the sector offset does not
// fit in 24 bits or the sector count is 128 or more.
func (l Location) Encode(dst []byte) error {
	if l.Offset < 0 || l.Size < 0 {
		return fmt.Errorf("%w: negative location (%d, %d)", errs.ErrOutOfRange, l.Offset, l.Size)
	}

	sectorOffset, sectorCount := l.Sectors()
	if sectorOffset >= MaxSectorOffset {
		return fmt.Errorf("%w: sector offset %d exceeds %d", errs.ErrOutOfRange, sectorOffset, MaxSectorOffset-1)
	}
	if sectorCount >= MaxSectorCount {
		return fmt.Errorf("%w: sector count %d exceeds %d", errs.ErrOutOfRange, sectorCount, MaxSectorCount-1)
	}

	dst[0] = byte(sectorOffset >> 16)
	dst[1] = byte(sectorOffset >> 8)
	dst[2] = byte(sectorOffset)
	dst[3] = byte(sectorCount)

	return nil
}

// Bytes returns the 4-byte encoding of the entry.
func (l Location) Bytes() ([]byte, error) {
	var b [LocationEntrySize]byte
	if err := l.Encode(b[:]); err != nil {
		return nil, err
	}

	return b[:], nil
}

func (l Location) String() string {
	if l.IsAbsent() {
		return "absent"
	}

	off, cnt := l.Sectors()

	return fmt.Sprintf("sector %d (+%d)", off, cnt)
}
