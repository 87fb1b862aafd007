// Package inspect analyzes the space usage and content of region files.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/region/compress"
	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
	"github.com/arloliu/region/internal/hash"
	"github.com/arloliu/region/section"
)

// SlotIssue is a slot whose payload could not be read or decompressed.
type SlotIssue struct {
	Index int
	Err   error
}

// Report summarizes one region file.
type Report struct {
	// Size is the file length in bytes.
	Size int64
	// Populated is the number of slots with a present location entry.
	Populated int
	// AllocatedSectors is the sum of the sector counts of all present entries.
	AllocatedSectors int64
	// LiveBytes is the sum of the framed payload sizes of readable slots.
	LiveBytes int64
	// OrphanedBytes counts payload-area bytes no present entry points into:
	// leftovers from relocated, shrunk or deleted payloads.
	OrphanedBytes int64
	// Schemes holds compressed and raw sizes per stored scheme.
	Schemes map[format.CompressionType]*compress.CompressionStats
	// Duplicates lists groups of slots whose decompressed payloads share a
	// fingerprint, each group in slot order.
	Duplicates [][]int
	// Corrupt lists slots that failed to decode.
	Corrupt []SlotIssue
	// Timestamps range over populated slots.
	OldestTimestamp, NewestTimestamp int32
}

// Waste returns the fraction of the payload area that is orphaned, in [0, 1].
func (r *Report) Waste() float64 {
	area := r.Size - section.HeaderSize
	if area <= 0 {
		return 0
	}

	return float64(r.OrphanedBytes) / float64(area)
}

// Analyze reads the region of size bytes from r.
//
// Only an unreadable header fails the analysis; per-slot problems are collected
// in Report.Corrupt.
func Analyze(r io.ReaderAt, size int64) (*Report, error) {
	if size < section.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrTruncatedHeader, size)
	}

	data := make([]byte, section.HeaderSize)
	if _, err := r.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	h, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Size:    size,
		Schemes: make(map[format.CompressionType]*compress.CompressionStats),
	}

	owned := make([]bool, section.SectorsFor(size))
	fingerprints := make(map[uint64][]int)
	first := true

	for index, loc := range h.Locations {
		if loc.IsAbsent() {
			continue
		}

		report.Populated++
		report.AllocatedSectors += loc.Size / section.SectorSize

		ts := h.Timestamps[index]
		if first || ts < report.OldestTimestamp {
			report.OldestTimestamp = ts
		}
		if first || ts > report.NewestTimestamp {
			report.NewestTimestamp = ts
		}
		first = false

		if err := loc.Validate(); err != nil {
			report.Corrupt = append(report.Corrupt, SlotIssue{Index: index, Err: err})
			continue
		}
		markOwned(owned, loc)

		ph, raw, err := readSlot(r, size, loc)
		if err != nil {
			report.Corrupt = append(report.Corrupt, SlotIssue{Index: index, Err: err})
			continue
		}

		report.LiveBytes += ph.FrameSize()
		stats, ok := report.Schemes[ph.Compression]
		if !ok {
			stats = &compress.CompressionStats{Algorithm: ph.Compression}
			report.Schemes[ph.Compression] = stats
		}
		stats.Add(len(raw), ph.BodySize())

		fp := hash.Fingerprint(raw)
		fingerprints[fp] = append(fingerprints[fp], index)
	}

	for sector := section.HeaderSize / section.SectorSize; sector < len(owned); sector++ {
		if owned[sector] {
			continue
		}
		report.OrphanedBytes += min(section.SectorSize, size-int64(sector)*section.SectorSize)
	}

	for _, slots := range fingerprints {
		if len(slots) > 1 {
			report.Duplicates = append(report.Duplicates, slots)
		}
	}
	slices.SortFunc(report.Duplicates, func(a, b []int) int { return a[0] - b[0] })

	return report, nil
}

func markOwned(owned []bool, loc section.Location) {
	start, count := loc.Sectors()
	for s := start; s < start+count && s < int64(len(owned)); s++ {
		owned[s] = true
	}
}

func readSlot(r io.ReaderAt, size int64, loc section.Location) (section.PayloadHeader, []byte, error) {
	var prefix [section.PayloadHeaderSize]byte
	if err := readAt(r, size, prefix[:], loc.Offset); err != nil {
		return section.PayloadHeader{}, nil, err
	}

	ph, err := section.ParsePayloadHeader(prefix[:])
	if err != nil {
		return section.PayloadHeader{}, nil, err
	}
	if err := ph.CheckFits(loc); err != nil {
		return section.PayloadHeader{}, nil, err
	}

	body := make([]byte, ph.BodySize())
	if err := readAt(r, size, body, loc.Offset+section.PayloadHeaderSize); err != nil {
		return section.PayloadHeader{}, nil, err
	}

	raw, err := compress.Decode(ph.Compression, body)
	if err != nil {
		return section.PayloadHeader{}, nil, fmt.Errorf("%w: %w", errs.ErrFormat, err)
	}

	return ph, raw, nil
}

func readAt(r io.ReaderAt, size int64, buf []byte, off int64) error {
	if off+int64(len(buf)) > size {
		return fmt.Errorf("%w: %d bytes at offset %d past end of file", errs.ErrFormat, len(buf), off)
	}

	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: short read at offset %d", errs.ErrFormat, off)
	}

	return err
}

// Chunk decompresses the payload of slot (x, z) from r.
// It returns found == false for an absent slot.
func Chunk(r io.ReaderAt, size int64, x, z int) ([]byte, bool, error) {
	var entry [section.LocationEntrySize]byte
	if err := readAt(r, size, entry[:], section.LocationEntryOffset(x, z)); err != nil {
		return nil, false, err
	}

	loc, err := section.ParseLocation(entry[:])
	if err != nil {
		return nil, false, err
	}
	if loc.IsAbsent() {
		return nil, false, nil
	}
	if err := loc.Validate(); err != nil {
		return nil, false, err
	}

	_, raw, err := readSlot(r, size, loc)
	if err != nil {
		return nil, false, err
	}

	return raw, true, nil
}
