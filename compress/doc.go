// Package compress provides the compression codecs applied to region chunk payloads.
//
// A chunk is stored as a serialized tag tree wrapped by one compression scheme.
// Two schemes have a 1-byte on-disk id and may appear in a region file:
//
//   - Gzip (id 1): klauspost/compress/gzip; concatenated members decode as one stream
//   - Zlib (id 2): klauspost/compress/zlib, the common modern default
//
// The remaining schemes have no on-disk id. They exist so a fully buffered
// region can keep its chunks in a cheaper in-memory form (its working scheme):
//
//   - None: raw bytes, the input slice is returned as-is
//   - LZ4: pierrec/lz4 block format
//   - S2: klauspost/compress/s2 block format
//   - Zstd: klauspost/compress/zstd with pooled encoders/decoders
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZlib)
//	if err != nil {
//	    return err
//	}
//	body, err := codec.Compress(tree)
//
// Transcode converts between schemes in one call:
//
//	gz, err := compress.Transcode(format.CompressionZlib, format.CompressionGzip, body)
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool'd encoder state and are
// safe for concurrent use.
//
// # Errors
//
// Decompressing malformed input always returns an error. Empty input is not a
// valid gzip or zlib stream and is rejected; the block codecs map empty input
// to empty output.
package compress
