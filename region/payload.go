package region

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/section"
)

// readFull reads len(buf) bytes at off. Running out of file is corruption:
// the location table promised bytes that are not there.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %d of %d bytes at offset %d", errs.ErrFormat, n, len(buf), off)
	}

	return err
}

// readLocation reads and decodes the location entry of slot index.
func readLocation(r io.ReaderAt, index int) (section.Location, error) {
	var entry [section.LocationEntrySize]byte

	n, err := r.ReadAt(entry[:], int64(index)*section.LocationEntrySize)
	if n < len(entry) {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return section.Location{}, errs.ErrTruncatedHeader
		}

		return section.Location{}, err
	}

	return section.ParseLocation(entry[:])
}

// readFrame reads the framed payload at loc and returns its header and
// compressed body.
func readFrame(r io.ReaderAt, index int, loc section.Location) (section.PayloadHeader, []byte, error) {
	if err := loc.Validate(); err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("slot %d: %w", index, err)
	}

	var prefix [section.PayloadHeaderSize]byte
	if err := readFull(r, prefix[:], loc.Offset); err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("slot %d: %w", index, err)
	}

	h, err := section.ParsePayloadHeader(prefix[:])
	if err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("slot %d: %w", index, err)
	}
	if err := h.CheckFits(loc); err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("slot %d: %w", index, err)
	}

	body := make([]byte, h.BodySize())
	if err := readFull(r, body, loc.Offset+section.PayloadHeaderSize); err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("slot %d: %w", index, err)
	}

	return h, body, nil
}

// decodeFailure marks a decompression error as corruption.
func decodeFailure(index int, err error) error {
	return fmt.Errorf("%w: slot %d: %w", errs.ErrFormat, index, err)
}
