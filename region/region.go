package region

import (
	"fmt"

	"github.com/arloliu/region/errs"
)

// Region stores up to 1024 chunk payloads and their timestamps, addressed by
// chunk coordinate. Coordinates are folded into the region's 32x32 grid, so
// (x, z) and (x+32, z) name the same slot.
//
// Payloads are opaque serialized trees; Region only compresses and frames them.
// An absent chunk is a normal result (found == false), distinct from any error.
type Region interface {
	// Chunk returns the decompressed payload stored for (x, z).
	Chunk(x, z int) (data []byte, found bool, err error)

	// SetChunk stores data for (x, z). A nil data deletes the chunk.
	SetChunk(x, z int, data []byte) error

	// DeleteChunk marks (x, z) absent. Deleting an absent chunk is a no-op.
	DeleteChunk(x, z int) error

	// HasChunk reports whether (x, z) holds a payload.
	HasChunk(x, z int) (bool, error)

	// Timestamp returns the raw timestamp stored for (x, z).
	Timestamp(x, z int) (int32, error)

	// SetTimestamp stores a raw timestamp for (x, z).
	SetTimestamp(x, z int, ts int32) error
}

var (
	_ Region = (*FileRegion)(nil)
	_ Region = (*MemoryRegion)(nil)
)

// TreeCodec converts between a chunk's tag tree and its serialized bytes.
// It is supplied by the caller; the region engine never inspects tree contents.
type TreeCodec[T any] interface {
	EncodeTree(tree T) ([]byte, error)
	DecodeTree(data []byte) (T, error)
}

// ChunkStore reads and writes chunk trees through a Region.
type ChunkStore[T any] struct {
	region Region
	codec  TreeCodec[T]
}

// NewChunkStore creates a ChunkStore over region using codec for tree (de)serialization.
func NewChunkStore[T any](region Region, codec TreeCodec[T]) *ChunkStore[T] {
	return &ChunkStore[T]{region: region, codec: codec}
}

// Region returns the underlying region.
func (s *ChunkStore[T]) Region() Region {
	return s.region
}

// Get returns the tree stored for (x, z).
//
// Returns found == false for an absent chunk. A payload that cannot be decoded
// into a tree fails with errs.ErrTreeDecode, which matches errs.ErrFormat.
func (s *ChunkStore[T]) Get(x, z int) (T, bool, error) {
	var zero T

	data, found, err := s.region.Chunk(x, z)
	if err != nil || !found {
		return zero, false, err
	}

	tree, err := s.codec.DecodeTree(data)
	if err != nil {
		return zero, false, fmt.Errorf("%w: chunk (%d, %d): %w", errs.ErrTreeDecode, x, z, err)
	}

	return tree, true, nil
}

// Set serializes tree and stores it for (x, z).
func (s *ChunkStore[T]) Set(x, z int, tree T) error {
	data, err := s.codec.EncodeTree(tree)
	if err != nil {
		return fmt.Errorf("encode chunk (%d, %d): %w", x, z, err)
	}
	if data == nil {
		data = []byte{}
	}

	return s.region.SetChunk(x, z, data)
}

// Delete marks (x, z) absent.
func (s *ChunkStore[T]) Delete(x, z int) error {
	return s.region.DeleteChunk(x, z)
}

// Timestamp returns the raw timestamp stored for (x, z).
func (s *ChunkStore[T]) Timestamp(x, z int) (int32, error) {
	return s.region.Timestamp(x, z)
}

// SetTimestamp stores a raw timestamp for (x, z).
func (s *ChunkStore[T]) SetTimestamp(x, z int, ts int32) error {
	return s.region.SetTimestamp(x, z, ts)
}
