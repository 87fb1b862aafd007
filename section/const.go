package section

// Region geometry. A region holds a 32x32 grid of chunk slots.
const (
	GridSize  = 32                  // GridSize is the number of slots along each axis.
	SlotCount = GridSize * GridSize // SlotCount is the number of chunk slots in one region.
	gridMask  = GridSize - 1
)

// Offsets and sizes in the region file. All multi-byte fields are big-endian.
const (
	SectorSize           = 4096                  // SectorSize is the unit of location offsets and sizes.
	LocationEntrySize    = 4                     // 3-byte sector offset + 1-byte sector count
	TimestampEntrySize   = 4                     // signed 32-bit timestamp
	LocationTableOffset  = 0                     // byte offset of the location table
	TimestampTableOffset = SectorSize            // byte offset of the timestamp table
	HeaderSize           = 2 * SectorSize        // both tables
	PayloadAreaOffset    = HeaderSize            // first byte a payload may occupy
	PayloadLengthSize    = 4                     // payload length prefix
	PayloadHeaderSize    = PayloadLengthSize + 1 // length prefix + compression id
)

// Location entry limits (exclusive).
const (
	MaxSectorOffset = 1 << 24 // a sector offset must fit in 3 bytes
	MaxSectorCount  = 128     // a payload may span at most 127 sectors

	// MaxFrameSize is the largest framed payload (prefix included) one slot can hold.
	MaxFrameSize = (MaxSectorCount - 1) * SectorSize
)

// ChunkIndex maps a chunk coordinate to its slot index in [0, SlotCount).
//
// Any global coordinate is accepted; it is folded into the region's local grid,
// so negative coordinates wrap like a floored modulo.
func ChunkIndex(x, z int) int {
	return (x & gridMask) + (z&gridMask)*GridSize
}

// SlotCoords is the inverse of ChunkIndex for local coordinates.
func SlotCoords(index int) (x, z int) {
	return index & gridMask, (index / GridSize) & gridMask
}

// NextSectorBoundary rounds n up to a multiple of SectorSize.
// Values already on a boundary are returned unchanged.
func NextSectorBoundary(n int64) int64 {
	if rem := n % SectorSize; rem != 0 {
		return n + SectorSize - rem
	}

	return n
}

// SectorsFor returns the number of sectors needed to hold n bytes.
func SectorsFor(n int64) int64 {
	return NextSectorBoundary(n) / SectorSize
}

// locationEntryOffset returns the file offset of slot index's location entry.
func locationEntryOffset(index int) int64 {
	return LocationTableOffset + int64(index)*LocationEntrySize
}

// timestampEntryOffset returns the file offset of slot index's timestamp entry.
func timestampEntryOffset(index int) int64 {
	return TimestampTableOffset + int64(index)*TimestampEntrySize
}

// LocationEntryOffset returns the file offset of the location entry for (x, z).
func LocationEntryOffset(x, z int) int64 {
	return locationEntryOffset(ChunkIndex(x, z))
}

// TimestampEntryOffset returns the file offset of the timestamp entry for (x, z).
func TimestampEntryOffset(x, z int) int64 {
	return timestampEntryOffset(ChunkIndex(x, z))
}
