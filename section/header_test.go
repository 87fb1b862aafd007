package section

import (
	"encoding/binary"
	"testing"

	"github.com/arloliu/region/errs"
	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	h := &Header{}
	h.Locations[0] = Location{Offset: 2 * SectorSize, Size: SectorSize}
	h.Locations[ChunkIndex(5, 9)] = Location{Offset: 3 * SectorSize, Size: 4 * SectorSize}
	h.Timestamps[0] = 12345
	h.Timestamps[SlotCount-1] = -7

	data, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)

	require.Equal(t, []byte{0, 0, 2, 1}, data[0:4])
	require.Equal(t, uint32(12345), binary.BigEndian.Uint32(data[TimestampTableOffset:]))
	require.Equal(t, uint32(0xFFFFFFF9), binary.BigEndian.Uint32(data[HeaderSize-4:]))

	parsed, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
	require.Equal(t, 2, parsed.Populated())
}

func TestHeader_Fresh(t *testing.T) {
	parsed, err := ParseHeader(make([]byte, HeaderSize+100))
	require.NoError(t, err)
	require.Equal(t, 0, parsed.Populated())

	for i := range SlotCount {
		require.True(t, parsed.Locations[i].IsAbsent())
		require.Equal(t, int32(0), parsed.Timestamps[i])
	}
}

func TestHeader_Errors(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
	require.ErrorIs(t, err, errs.ErrFormat)

	h := &Header{}
	require.ErrorIs(t, h.Parse(make([]byte, 10)), errs.ErrInvalidHeaderSize)

	h.Locations[3] = Location{Offset: 2 * SectorSize, Size: MaxSectorCount * SectorSize}
	_, err = h.Bytes()
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}
