package compress

import (
	"fmt"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
)

// Compressor compresses a serialized chunk tree into a payload body.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller, except for
	//     the no-op codec which returns the input slice itself
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a serialized chunk tree from a payload body.
//
// Malformed input is always reported as an error, never silently truncated.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with a different algorithm
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats accumulates compressed and raw sizes for one scheme.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// Count is the number of payloads accumulated
	Count int

	// OriginalSize is the total size of the data before compression
	OriginalSize int64

	// CompressedSize is the total size of the data after compression
	CompressedSize int64
}

// Add accumulates one payload.
func (s *CompressionStats) Add(originalSize, compressedSize int) {
	s.Count++
	s.OriginalSize += int64(originalSize)
	s.CompressedSize += int64(compressedSize)
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Returns 0.0 if the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a new Codec for the given scheme.
//
// Parameters:
//   - compressionType: compression scheme
//   - target: description of the target usage (for error messages)
//
// Returns:
//   - Codec: codec instance for the specified scheme
//   - error: errs.ErrInvalidArgument for an unknown scheme
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	case format.CompressionZlib:
		return NewZlibCompressor(), nil
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %s", errs.ErrInvalidArgument, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionGzip: NewGzipCompressor(),
	format.CompressionZlib: NewZlibCompressor(),
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionZstd: NewZstdCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type: %s", errs.ErrInvalidArgument, compressionType)
}

// Encode compresses raw with the given scheme.
func Encode(compressionType format.CompressionType, raw []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.Compress(raw)
}

// Decode decompresses data that was compressed with the given scheme.
func Decode(compressionType format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(data)
}

// Transcode converts data compressed with one scheme into another scheme.
// It is a no-op returning data itself when both schemes are equal.
func Transcode(from, to format.CompressionType, data []byte) ([]byte, error) {
	if from == to {
		return data, nil
	}

	raw, err := Decode(from, data)
	if err != nil {
		return nil, err
	}

	return Encode(to, raw)
}
