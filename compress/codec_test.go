package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"Gzip": NewGzipCompressor(),
		"Zlib": NewZlibCompressor(),
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// chunkLikeData imitates a serialized chunk tree: short tag headers followed by
// long runs of block ids.
func chunkLikeData(size int) []byte {
	data := make([]byte, 0, size)
	for i := 0; len(data) < size; i++ {
		data = append(data, 0x0A, 0x00, byte(i%7), 'S', 'e', 'c', 't', 'i', 'o', 'n')
		data = append(data, bytes.Repeat([]byte{byte(i % 3)}, 64)...)
	}

	return data[:size]
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		name  string
		cType format.CompressionType
		want  Codec
	}{
		{"gzip", format.CompressionGzip, NewGzipCompressor()},
		{"zlib", format.CompressionZlib, NewZlibCompressor()},
		{"none", format.CompressionNone, NewNoOpCompressor()},
		{"lz4", format.CompressionLZ4, NewLZ4Compressor()},
		{"s2", format.CompressionS2, NewS2Compressor()},
		{"zstd", format.CompressionZstd, NewZstdCompressor()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CreateCodec(tt.cType, "chunk")
			require.NoError(t, err)
			require.IsType(t, tt.want, codec)

			builtin, err := GetCodec(tt.cType)
			require.NoError(t, err)
			require.IsType(t, tt.want, builtin)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := CreateCodec(format.CompressionType(0x7F), "chunk")
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		require.Contains(t, err.Error(), "invalid chunk compression")

		_, err = GetCodec(format.CompressionType(0x7F))
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestCompressionStats_Calculations(t *testing.T) {
	var stats CompressionStats
	require.Equal(t, 0.0, stats.CompressionRatio())

	stats.Algorithm = format.CompressionGzip
	stats.Add(1000, 200)
	stats.Add(1000, 300)

	require.Equal(t, 2, stats.Count)
	require.Equal(t, int64(2000), stats.OriginalSize)
	require.Equal(t, int64(500), stats.CompressedSize)
	require.InDelta(t, 0.25, stats.CompressionRatio(), 1e-9)
	require.InDelta(t, 75.0, stats.SpaceSavings(), 1e-9)
}

func TestNoOpCompressor_SharesInput(t *testing.T) {
	codec := NewNoOpCompressor()
	data := []byte("raw chunk")

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &data[0], &decompressed[0])
}

func TestStreamCodecs_EmptyData(t *testing.T) {
	for name, codec := range map[string]Codec{"Gzip": NewGzipCompressor(), "Zlib": NewZlibCompressor()} {
		t.Run(name, func(t *testing.T) {
			// an empty tree still produces a complete stream
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.NotEmpty(t, compressed)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)

			// a zero-length body is never a valid stream
			_, err = codec.Decompress(nil)
			require.Error(t, err)
		})
	}
}

func TestBlockCodecs_EmptyData(t *testing.T) {
	for name, codec := range map[string]Codec{"LZ4": NewLZ4Compressor(), "S2": NewS2Compressor(), "Zstd": NewZstdCompressor()} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "small_text", data: []byte("Hello, World!")},
		{name: "single_byte", data: []byte{0x42}},
		{name: "binary_data", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{name: "one_sector", data: chunkLikeData(4096)},
		{name: "typical_chunk", data: chunkLikeData(96 * 1024)},
		{
			name: "pseudo_random",
			data: func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					if i%100 < 50 {
						data[i] = byte(i % 256)
					} else {
						data[i] = byte((i*7 + i*i) % 256)
					}
				}

				return data
			}(),
		},
		{name: "highly_compressible", data: make([]byte, 1024*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{name: "random_bytes", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{name: "text_as_compressed", data: []byte("this is not compressed data")},
		{name: "corrupted_header", data: []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestStreamCodecs_TruncatedStream(t *testing.T) {
	data := chunkLikeData(16 * 1024)

	for name, codec := range map[string]Codec{"Gzip": NewGzipCompressor(), "Zlib": NewZlibCompressor()} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed[:len(compressed)/2])
			require.Error(t, err)
		})
	}
}

func TestGzipCompressor_ConcatenatedMembers(t *testing.T) {
	codec := NewGzipCompressor()
	first := chunkLikeData(3000)
	second := []byte("second member")

	a, err := codec.Compress(first)
	require.NoError(t, err)
	b, err := codec.Compress(second)
	require.NoError(t, err)

	out, err := codec.Decompress(append(bytes.Clone(a), b...))
	require.NoError(t, err)
	require.Equal(t, append(bytes.Clone(first), second...), out)

	t.Run("trailing junk after a member", func(t *testing.T) {
		_, err := codec.Decompress(append(bytes.Clone(a), []byte("junk")...))
		require.Error(t, err)
	})
}

func TestTranscode(t *testing.T) {
	raw := chunkLikeData(8192)

	gz, err := Encode(format.CompressionGzip, raw)
	require.NoError(t, err)

	t.Run("same scheme is identity", func(t *testing.T) {
		out, err := Transcode(format.CompressionGzip, format.CompressionGzip, gz)
		require.NoError(t, err)
		require.Equal(t, gz, out)
	})

	for _, to := range []format.CompressionType{
		format.CompressionZlib,
		format.CompressionNone,
		format.CompressionLZ4,
		format.CompressionS2,
		format.CompressionZstd,
	} {
		t.Run(to.String(), func(t *testing.T) {
			out, err := Transcode(format.CompressionGzip, to, gz)
			require.NoError(t, err)

			back, err := Decode(to, out)
			require.NoError(t, err)
			require.Equal(t, raw, back)
		})
	}

	t.Run("corrupt source", func(t *testing.T) {
		_, err := Transcode(format.CompressionZlib, format.CompressionGzip, []byte("garbage"))
		require.Error(t, err)
	})
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	testData := chunkLikeData(2048)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			done := make(chan error, numGoroutines)

			for range numGoroutines {
				go func() {
					compressed, err := codec.Compress(testData)
					if err != nil {
						done <- err
						return
					}
					decompressed, err := codec.Decompress(compressed)
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(testData, decompressed) {
						done <- fmt.Errorf("round-trip mismatch")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}
