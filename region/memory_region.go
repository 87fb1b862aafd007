package region

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/region/compress"
	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
	"github.com/arloliu/region/internal/pool"
	"github.com/arloliu/region/section"
)

// MemoryRegion is a fully buffered Region.
//
// Every payload is held in memory, compressed with one working scheme chosen at
// construction. Chunk and SetChunk never touch storage; changes reach disk only
// through an explicit Save or SaveTo, which rewrite the whole region with every
// payload packed back to back from the first payload sector.
//
// Thread Safety: a MemoryRegion is not safe for concurrent mutation. Save must
// not run concurrently with SetChunk, DeleteChunk or SetTimestamp.
type MemoryRegion struct {
	working    format.CompressionType
	codec      compress.Codec
	chunks     [section.SlotCount][]byte
	timestamps [section.SlotCount]int32

	fs      afero.Fs
	logger  zerolog.Logger
	metrics *Metrics
}

// NewMemoryRegion creates an empty MemoryRegion that keeps payloads compressed
// with working. Any known scheme may be used, including ones without an on-disk id.
//
// Available options:
//   - WithFs(afero.Fs): filesystem used by LoadMemoryRegion and Save
//   - WithLogger(zerolog.Logger)
//   - WithMetrics(*Metrics)
func NewMemoryRegion(working format.CompressionType, opts ...Option) (*MemoryRegion, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(working, "working")
	if err != nil {
		return nil, err
	}

	return &MemoryRegion{
		working: working,
		codec:   codec,
		fs:      cfg.fs,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}, nil
}

// LoadMemoryRegion reads the region file at path into memory, recompressing
// every payload from its stored scheme into working.
//
// Every payload is decompressed while loading, even when its stored scheme is
// already the working scheme, so a corrupt payload fails here with errs.ErrFormat.
func LoadMemoryRegion(path string, working format.CompressionType, opts ...Option) (*MemoryRegion, error) {
	m, err := NewMemoryRegion(working, opts...)
	if err != nil {
		return nil, err
	}
	m.logger = m.logger.With().Str("region", path).Logger()

	f, err := m.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := m.load(f); err != nil {
		return nil, err
	}

	return m, nil
}

// ReadMemoryRegion reads a region from r into memory, recompressing every
// payload from its stored scheme into working.
func ReadMemoryRegion(r io.ReaderAt, working format.CompressionType, opts ...Option) (*MemoryRegion, error) {
	m, err := NewMemoryRegion(working, opts...)
	if err != nil {
		return nil, err
	}

	if err := m.load(r); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MemoryRegion) load(r io.ReaderAt) error {
	data := make([]byte, section.HeaderSize)
	if err := readFull(r, data, 0); err != nil {
		if errors.Is(err, errs.ErrFormat) {
			return fmt.Errorf("%w: %w", errs.ErrTruncatedHeader, err)
		}

		return err
	}

	h, err := section.ParseHeader(data)
	if err != nil {
		return err
	}

	m.timestamps = h.Timestamps

	loaded := 0
	for index, loc := range h.Locations {
		if loc.IsAbsent() {
			continue
		}

		ph, body, err := readFrame(r, index, loc)
		if err != nil {
			return err
		}

		raw, err := compress.Decode(ph.Compression, body)
		if err != nil {
			return decodeFailure(index, err)
		}

		payload := body
		if ph.Compression != m.working {
			if payload, err = m.codec.Compress(raw); err != nil {
				return fmt.Errorf("slot %d: %w", index, err)
			}
		}
		m.chunks[index] = m.own(payload)
		loaded++
	}

	m.logger.Debug().
		Int("chunks", loaded).
		Stringer("working", m.working).
		Msg("loaded memory region")

	return nil
}

// own returns a slice safe to keep: never nil, and never aliasing caller
// memory when the working scheme passes data through.
func (m *MemoryRegion) own(payload []byte) []byte {
	if payload == nil {
		return []byte{}
	}
	if m.working == format.CompressionNone {
		return bytes.Clone(payload)
	}

	return payload
}

// Working returns the working scheme.
func (m *MemoryRegion) Working() format.CompressionType {
	return m.working
}

// Len returns the number of present chunks.
func (m *MemoryRegion) Len() int {
	n := 0
	for _, c := range m.chunks {
		if c != nil {
			n++
		}
	}

	return n
}

// Chunk returns the decompressed payload stored for (x, z).
func (m *MemoryRegion) Chunk(x, z int) ([]byte, bool, error) {
	index := section.ChunkIndex(x, z)

	payload := m.chunks[index]
	if payload == nil {
		m.metrics.observeRead(false)
		return nil, false, nil
	}

	raw, err := m.codec.Decompress(payload)
	if err != nil {
		return nil, false, decodeFailure(index, err)
	}
	m.metrics.observeRead(true)

	return m.own(raw), true, nil
}

// HasChunk reports whether (x, z) holds a payload.
func (m *MemoryRegion) HasChunk(x, z int) (bool, error) {
	return m.chunks[section.ChunkIndex(x, z)] != nil, nil
}

// SetChunk stores data for (x, z), replacing any previous payload.
// A nil data deletes the chunk.
func (m *MemoryRegion) SetChunk(x, z int, data []byte) error {
	if data == nil {
		return m.DeleteChunk(x, z)
	}

	payload, err := m.codec.Compress(data)
	if err != nil {
		return err
	}
	m.chunks[section.ChunkIndex(x, z)] = m.own(payload)
	m.metrics.observeWrite(writeMemory, 0)

	return nil
}

// DeleteChunk marks (x, z) absent.
func (m *MemoryRegion) DeleteChunk(x, z int) error {
	m.chunks[section.ChunkIndex(x, z)] = nil
	m.metrics.observeWrite(writeDelete, 0)

	return nil
}

// Timestamp returns the raw timestamp stored for (x, z).
func (m *MemoryRegion) Timestamp(x, z int) (int32, error) {
	return m.timestamps[section.ChunkIndex(x, z)], nil
}

// SetTimestamp stores a raw timestamp for (x, z).
func (m *MemoryRegion) SetTimestamp(x, z int, ts int32) error {
	m.timestamps[section.ChunkIndex(x, z)] = ts
	return nil
}

// Save writes the region to path, replacing any existing file.
// See SaveTo for the layout and errors.
func (m *MemoryRegion) Save(path string, final format.CompressionType) (err error) {
	// Build first so a bad scheme or an oversized chunk leaves path untouched.
	header, frames, err := m.build(final)
	if err != nil {
		return err
	}

	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = m.write(f, header, frames)

	return err
}

// SaveTo writes the whole region to w in one sequential pass and returns the
// number of bytes written.
//
// Every present chunk is recompressed from the working scheme into final and
// placed, in slot order, at the next sector boundary after the previous one,
// starting right after the header. The result has no unused sectors.
//
// Returns:
//   - errs.ErrInvalidArgument if final has no on-disk id (e.g. CompressionNone)
//   - errs.ErrOutOfRange if a chunk needs 128 sectors or more
//
// Both are reported before anything is written to w.
func (m *MemoryRegion) SaveTo(w io.Writer, final format.CompressionType) (int64, error) {
	header, frames, err := m.build(final)
	if err != nil {
		return 0, err
	}

	return m.write(w, header, frames)
}

// build recompresses and frames every present chunk and lays them out.
func (m *MemoryRegion) build(final format.CompressionType) ([]byte, [][]byte, error) {
	if !final.Persistable() {
		return nil, nil, fmt.Errorf("%w: cannot save with compression %s", errs.ErrInvalidArgument, final)
	}

	h := &section.Header{Timestamps: m.timestamps}
	frames := make([][]byte, 0, m.Len())
	offset := int64(section.PayloadAreaOffset)

	for index, payload := range m.chunks {
		if payload == nil {
			continue
		}

		body, err := compress.Transcode(m.working, final, payload)
		if err != nil {
			return nil, nil, decodeFailure(index, err)
		}

		frame, err := section.AppendFrame(nil, final, body)
		if err != nil {
			return nil, nil, fmt.Errorf("slot %d: %w", index, err)
		}

		loc := section.Location{Offset: offset, Size: section.NextSectorBoundary(int64(len(frame)))}
		h.Locations[index] = loc
		frames = append(frames, frame)
		offset = loc.End()
	}

	header, err := h.Bytes()
	if err != nil {
		return nil, nil, err
	}

	return header, frames, nil
}

func (m *MemoryRegion) write(w io.Writer, header []byte, frames [][]byte) (int64, error) {
	written, err := w.Write(header)
	total := int64(written)
	if err != nil {
		return total, err
	}

	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	for _, frame := range frames {
		buf.Reset()
		_, _ = buf.Write(frame)
		buf.PadTo(int(section.NextSectorBoundary(int64(len(frame)))))

		n, err := buf.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}

	m.metrics.observeSave()
	m.logger.Debug().
		Int("chunks", len(frames)).
		Int64("bytes", total).
		Msg("saved memory region")

	return total, nil
}
