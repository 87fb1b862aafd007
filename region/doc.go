// Package region stores compressed chunk payloads in region files.
//
// A region file holds a 32x32 grid of chunk slots behind an 8 KiB header: a
// location table (where each payload lives, in 4096-byte sectors) followed by
// a timestamp table. See package section for the byte layout.
//
// Two implementations of Region are provided:
//
//   - FileRegion works directly on disk. Each call opens the file, reads or
//     writes the few bytes it needs and closes it. New or grown payloads are
//     appended; space is never reclaimed.
//   - MemoryRegion loads the whole file, keeps every payload in memory under a
//     working compression scheme, and writes everything back in one compact
//     pass on Save.
//
// # Basic Usage
//
//	r, err := region.OpenFileRegion("r.0.0.mca", region.WithCompression(format.CompressionZlib))
//	if err != nil {
//	    return err
//	}
//	if err := r.SetChunk(3, 7, raw); err != nil {
//	    return err
//	}
//	data, found, err := r.Chunk(3, 7)
//
// Compacting a region:
//
//	m, err := region.LoadMemoryRegion("r.0.0.mca", format.CompressionLZ4)
//	if err != nil {
//	    return err
//	}
//	err = m.Save("r.0.0.mca", format.CompressionGzip)
//
// # Errors
//
// Corrupt containers are reported as errs.ErrFormat (or one of its refinements),
// unencodable locations as errs.ErrOutOfRange and caller mistakes as
// errs.ErrInvalidArgument. Filesystem errors surface unchanged.
//
// # Trees
//
// ChunkStore layers a caller-supplied TreeCodec over any Region, so callers can
// read and write decoded chunk trees rather than raw bytes.
package region
