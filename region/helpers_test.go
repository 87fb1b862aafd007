package region

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/region/compress"
	"github.com/arloliu/region/format"
	"github.com/arloliu/region/section"
)

// chunkLikeData returns a compressible payload resembling a serialized tag tree.
func chunkLikeData(size int) []byte {
	var buf bytes.Buffer
	for i := 0; buf.Len() < size; i++ {
		buf.WriteString("\x0a\x00\x05Level\x03\x00\x04xPos")
		_ = binary.Write(&buf, binary.BigEndian, int32(i))
		buf.WriteString("\x07\x00\x06Blocks")
		buf.Write(bytes.Repeat([]byte{byte(i % 7)}, 24))
	}

	return buf.Bytes()[:size]
}

// randomData returns size incompressible bytes.
func randomData(seed int64, size int) []byte {
	b := make([]byte, size)
	_, _ = rand.New(rand.NewSource(seed)).Read(b) //nolint: gosec

	return b
}

// framedSize returns the on-disk frame size of raw compressed with c.
func framedSize(t *testing.T, c format.CompressionType, raw []byte) int64 {
	t.Helper()

	body, err := compress.Encode(c, raw)
	require.NoError(t, err)

	return section.FrameSize(len(body))
}

type rawSlot struct {
	index int
	loc   section.Location
	frame []byte
}

// writeRawRegion writes a region file slot by slot, bypassing all validation,
// so tests can build corrupt containers.
func writeRawRegion(t *testing.T, fs afero.Fs, path string, slots ...rawSlot) {
	t.Helper()

	data := make([]byte, section.HeaderSize)
	for _, s := range slots {
		off := s.index * section.LocationEntrySize
		sectorOffset := s.loc.Offset / section.SectorSize
		data[off] = byte(sectorOffset >> 16)
		data[off+1] = byte(sectorOffset >> 8)
		data[off+2] = byte(sectorOffset)
		data[off+3] = byte(s.loc.Size / section.SectorSize)

		if s.frame == nil {
			continue
		}
		end := int(s.loc.Offset) + len(s.frame)
		if end > len(data) {
			data = append(data, make([]byte, end-len(data))...)
		}
		copy(data[s.loc.Offset:], s.frame)
	}

	require.NoError(t, afero.WriteFile(fs, path, data, filePerm))
}

// rawFrame builds [length][id][body] without checking id or length.
func rawFrame(length uint32, id byte, body []byte) []byte {
	frame := binary.BigEndian.AppendUint32(nil, length)
	frame = append(frame, id)

	return append(frame, body...)
}

func newMemFileRegion(t *testing.T, opts ...Option) (*FileRegion, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	r, err := OpenFileRegion("r.0.0.mca", append([]Option{WithFs(fs)}, opts...)...)
	require.NoError(t, err)

	return r, fs
}
