package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var errEmptyStream = errors.New("empty compressed stream")

// gzipWriterPool pools gzip writers; Reset rebinds a writer to a new destination
// without reallocating its compression state.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool sync.Pool

// GzipCompressor provides gzip (RFC 1952) compression, the default on-disk scheme
// for region payloads (compression id 1).
type GzipCompressor struct{}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a new gzip compressor.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Compress compresses the input data into a single gzip member.
// Empty input still yields a complete, valid gzip stream.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip data. A stream of several concatenated members
// decodes to the concatenation of their contents, as RFC 1952 allows.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("gzip decompression failed: %w", errEmptyStream)
	}

	var r *gzip.Reader
	if pooled, ok := gzipReaderPool.Get().(*gzip.Reader); ok {
		if err := pooled.Reset(bytes.NewReader(data)); err != nil {
			gzipReaderPool.Put(pooled)
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
		r = pooled
	} else {
		nr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
		r = nr
	}
	defer gzipReaderPool.Put(r)

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return out, nil
}
