package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint computes the xxHash64 of a decompressed chunk payload.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
