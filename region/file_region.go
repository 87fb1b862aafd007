package region

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/region/compress"
	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
	"github.com/arloliu/region/internal/pool"
	"github.com/arloliu/region/section"
)

const filePerm = 0o644

// FileRegion is a disk-backed Region.
//
// It keeps no file handle and no cached state between calls: every operation
// opens the file, touches only the bytes it needs and closes it again on every
// exit path. Reads open the file read-only, writes open it read-write.
//
// Payload space is allocated append-only. A payload that still fits in its
// slot's allocation is overwritten in place; otherwise it is written at the
// next sector boundary past the end of the file and the location entry is
// repointed. Space given up by a relocated, shrunk or deleted payload is never
// reclaimed; MemoryRegion.Save rewrites a region without gaps.
//
// Thread Safety: a FileRegion performs no locking. Concurrent writers race on
// the end-of-file position, so callers must serialize writes to one file.
type FileRegion struct {
	path        string
	fs          afero.Fs
	compression format.CompressionType
	codec       compress.Codec
	logger      zerolog.Logger
	metrics     *Metrics
}

// OpenFileRegion opens the region file at path, creating it with an empty
// header if it does not exist.
//
// A zero-length file is initialized like a missing one. A file shorter than
// the header fails with errs.ErrTruncatedHeader.
//
// Available options:
//   - WithFs(afero.Fs): filesystem to use (default OS filesystem)
//   - WithCompression(format.CompressionGzip|CompressionZlib): scheme for new payloads (default gzip)
//   - WithLogger(zerolog.Logger)
//   - WithMetrics(*Metrics)
func OpenFileRegion(path string, opts ...Option) (*FileRegion, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	r := &FileRegion{
		path:        path,
		fs:          cfg.fs,
		compression: cfg.compression,
		codec:       codec,
		logger:      cfg.logger.With().Str("region", path).Logger(),
		metrics:     cfg.metrics,
	}

	if err := r.init(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *FileRegion) init() error {
	info, err := r.fs.Stat(r.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	case info.Size() == 0:
	case info.Size() < section.HeaderSize:
		return fmt.Errorf("%w: %s is %d bytes", errs.ErrTruncatedHeader, r.path, info.Size())
	default:
		return nil
	}

	err = r.withFile(os.O_RDWR|os.O_CREATE, func(f afero.File) error {
		_, err := f.WriteAt(make([]byte, section.HeaderSize), 0)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Debug().Msg("created region file")

	return nil
}

// withFile opens the region file with flag, runs fn and always closes the file.
// A close error is reported only if fn succeeded.
func (r *FileRegion) withFile(flag int, fn func(f afero.File) error) (err error) {
	f, err := r.fs.OpenFile(r.path, flag, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(f)
}

// Path returns the path of the region file.
func (r *FileRegion) Path() string {
	return r.path
}

// Compression returns the scheme new payloads are written with.
func (r *FileRegion) Compression() format.CompressionType {
	return r.compression
}

// Chunk returns the decompressed payload stored for (x, z).
func (r *FileRegion) Chunk(x, z int) ([]byte, bool, error) {
	index := section.ChunkIndex(x, z)

	var data []byte
	err := r.withFile(os.O_RDONLY, func(f afero.File) error {
		loc, err := readLocation(f, index)
		if err != nil {
			return err
		}
		if loc.IsAbsent() {
			return nil
		}

		h, body, err := readFrame(f, index, loc)
		if err != nil {
			return err
		}

		raw, err := compress.Decode(h.Compression, body)
		if err != nil {
			return decodeFailure(index, err)
		}
		if raw == nil {
			raw = []byte{}
		}
		data = raw

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	r.metrics.observeRead(data != nil)

	return data, data != nil, nil
}

// HasChunk reports whether (x, z) holds a payload.
func (r *FileRegion) HasChunk(x, z int) (bool, error) {
	index := section.ChunkIndex(x, z)

	var present bool
	err := r.withFile(os.O_RDONLY, func(f afero.File) error {
		loc, err := readLocation(f, index)
		if err != nil {
			return err
		}
		present = !loc.IsAbsent()

		return nil
	})

	return present, err
}

// SetChunk compresses data with the region's scheme and stores it for (x, z).
// A nil data deletes the chunk.
//
// Returns errs.ErrOutOfRange, before anything is written, if the framed payload
// needs more than 127 sectors or the file has outgrown 2^24 sectors.
func (r *FileRegion) SetChunk(x, z int, data []byte) error {
	if data == nil {
		return r.DeleteChunk(x, z)
	}

	index := section.ChunkIndex(x, z)

	body, err := r.codec.Compress(data)
	if err != nil {
		return err
	}

	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	buf.B, err = section.AppendFrame(buf.B, r.compression, body)
	if err != nil {
		return fmt.Errorf("slot %d: %w", index, err)
	}
	frameSize := int64(buf.Len())

	return r.withFile(os.O_RDWR, func(f afero.File) error {
		loc, err := readLocation(f, index)
		if err != nil {
			return err
		}
		if err := loc.Validate(); err != nil {
			return fmt.Errorf("slot %d: %w", index, err)
		}

		if !loc.IsAbsent() && frameSize <= loc.Size {
			if _, err := f.WriteAt(buf.Bytes(), loc.Offset); err != nil {
				return err
			}
			r.metrics.observeWrite(writeInPlace, 0)

			return nil
		}

		info, err := f.Stat()
		if err != nil {
			return err
		}
		end := info.Size()

		next := section.Location{
			Offset: section.NextSectorBoundary(end),
			Size:   section.NextSectorBoundary(frameSize),
		}
		entry, err := next.Bytes()
		if err != nil {
			return fmt.Errorf("slot %d: %w", index, err)
		}

		buf.PadTo(int(next.Size))
		if _, err := f.WriteAt(buf.Bytes(), next.Offset); err != nil {
			return err
		}
		if _, err := f.WriteAt(entry, int64(index)*section.LocationEntrySize); err != nil {
			return err
		}

		r.logger.Debug().
			Int("slot", index).
			Stringer("from", loc).
			Stringer("to", next).
			Msg("relocated chunk payload")
		r.metrics.observeWrite(writeAppend, next.End()-end)

		return nil
	})
}

// DeleteChunk zeroes the location entry of (x, z). The payload bytes stay in
// the file.
func (r *FileRegion) DeleteChunk(x, z int) error {
	offset := section.LocationEntryOffset(x, z)

	err := r.withFile(os.O_RDWR, func(f afero.File) error {
		var zero [section.LocationEntrySize]byte
		_, err := f.WriteAt(zero[:], offset)

		return err
	})
	if err != nil {
		return err
	}

	r.metrics.observeWrite(writeDelete, 0)

	return nil
}

// Timestamp returns the raw timestamp stored for (x, z).
func (r *FileRegion) Timestamp(x, z int) (int32, error) {
	offset := section.TimestampEntryOffset(x, z)

	var ts int32
	err := r.withFile(os.O_RDONLY, func(f afero.File) error {
		var entry [section.TimestampEntrySize]byte
		if err := readFull(f, entry[:], offset); err != nil {
			return err
		}
		ts = int32(binary.BigEndian.Uint32(entry[:])) //nolint: gosec

		return nil
	})

	return ts, err
}

// SetTimestamp stores a raw timestamp for (x, z).
func (r *FileRegion) SetTimestamp(x, z int, ts int32) error {
	offset := section.TimestampEntryOffset(x, z)

	return r.withFile(os.O_RDWR, func(f afero.File) error {
		var entry [section.TimestampEntrySize]byte
		binary.BigEndian.PutUint32(entry[:], uint32(ts)) //nolint: gosec
		_, err := f.WriteAt(entry[:], offset)

		return err
	})
}

// Header reads both tables in one pass.
func (r *FileRegion) Header() (*section.Header, error) {
	var h *section.Header
	err := r.withFile(os.O_RDONLY, func(f afero.File) error {
		data := make([]byte, section.HeaderSize)
		if err := readFull(f, data, 0); err != nil {
			if errors.Is(err, errs.ErrFormat) {
				return fmt.Errorf("%w: %w", errs.ErrTruncatedHeader, err)
			}

			return err
		}

		var err error
		h, err = section.ParseHeader(data)

		return err
	})

	return h, err
}

// Size returns the current length of the region file.
func (r *FileRegion) Size() (int64, error) {
	info, err := r.fs.Stat(r.path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
