// Package section defines the byte layout of a region file and the codecs for
// its fixed-size structures.
//
// # Region Structure
//
// A region file holds 1024 chunk slots (a 32x32 grid) and is paged in 4 KiB
// sectors:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Sector 0: location table (1024 × 4 bytes)               │
//	│  - 3-byte big-endian sector offset                      │
//	│  - 1-byte sector count                                  │
//	│  - (0, 0) marks an absent slot                          │
//	├─────────────────────────────────────────────────────────┤
//	│ Sector 1: timestamp table (1024 × 4 bytes)              │
//	│  - big-endian int32 per slot                            │
//	├─────────────────────────────────────────────────────────┤
//	│ Sector 2..: payload area                                │
//	│  - each payload starts on a sector boundary             │
//	│  - [4-byte length][1-byte compression id][body]         │
//	│  - bytes past a payload up to its allocation are unused │
//	└─────────────────────────────────────────────────────────┘
//
// Slot i's location entry is at byte 4i and its timestamp at byte 4096+4i,
// where i = ChunkIndex(x, z) = (x mod 32) + (z mod 32)*32.
//
// # Limits
//
// A sector offset must fit in 24 bits and a sector count must be below 128,
// so a single framed payload is at most MaxFrameSize (520,192) bytes. Encoding
// a Location outside these limits fails with errs.ErrOutOfRange before any
// byte is produced.
//
// # Thread Safety
//
// All types in this package are plain values; functions are pure.
package section
