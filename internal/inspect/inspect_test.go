package inspect

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
	"github.com/arloliu/region/region"
	"github.com/arloliu/region/section"
)

func analyzeFile(t *testing.T, fs afero.Fs, path string) *Report {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	report, err := Analyze(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	return report
}

func TestAnalyze_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := region.OpenFileRegion("r.mca", region.WithFs(fs))
	require.NoError(t, err)

	report := analyzeFile(t, fs, "r.mca")
	require.Equal(t, int64(section.HeaderSize), report.Size)
	require.Zero(t, report.Populated)
	require.Zero(t, report.OrphanedBytes)
	require.Empty(t, report.Schemes)
	require.Empty(t, report.Duplicates)
	require.Empty(t, report.Corrupt)
	require.Zero(t, report.Waste())
}

func TestAnalyze_Usage(t *testing.T) {
	fs := afero.NewMemMapFs()

	gz, err := region.OpenFileRegion("r.mca", region.WithFs(fs))
	require.NoError(t, err)
	zl, err := region.OpenFileRegion("r.mca", region.WithFs(fs), region.WithCompression(format.CompressionZlib))
	require.NoError(t, err)

	require.NoError(t, gz.SetChunk(0, 0, []byte("same")))
	require.NoError(t, zl.SetChunk(1, 0, []byte("same")))
	require.NoError(t, gz.SetChunk(2, 0, []byte("different")))
	require.NoError(t, gz.SetTimestamp(0, 0, 10))
	require.NoError(t, gz.SetTimestamp(2, 0, 30))

	// Relocating slot 2 orphans its first sector; deleting slot 3 orphans another.
	require.NoError(t, gz.SetChunk(3, 0, []byte("gone")))
	require.NoError(t, gz.DeleteChunk(3, 0))
	big := make([]byte, 9000)
	_, _ = rand.New(rand.NewSource(1)).Read(big) //nolint: gosec
	require.NoError(t, gz.SetChunk(2, 0, big))

	report := analyzeFile(t, fs, "r.mca")
	require.Equal(t, 3, report.Populated)
	require.Empty(t, report.Corrupt)

	h, err := gz.Header()
	require.NoError(t, err)
	relocated := h.Locations[2]
	require.Equal(t, 2+relocated.Size/section.SectorSize, report.AllocatedSectors)
	require.Equal(t, int64(2*section.SectorSize), report.OrphanedBytes)
	require.Equal(t, report.Size, relocated.End())
	require.InDelta(t, float64(2*section.SectorSize)/float64(report.Size-section.HeaderSize), report.Waste(), 1e-9)

	require.Len(t, report.Schemes, 2)
	require.Equal(t, 2, report.Schemes[format.CompressionGzip].Count)
	require.Equal(t, 1, report.Schemes[format.CompressionZlib].Count)
	require.Equal(t, int64(4+len(big)), report.Schemes[format.CompressionGzip].OriginalSize)

	require.Equal(t, [][]int{{0, 1}}, report.Duplicates)
	require.Equal(t, int32(0), report.OldestTimestamp)
	require.Equal(t, int32(30), report.NewestTimestamp)
	require.Positive(t, report.LiveBytes)
}

func TestAnalyze_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, err := region.OpenFileRegion("r.mca", region.WithFs(fs))
	require.NoError(t, err)
	require.NoError(t, r.SetChunk(0, 0, []byte("ok")))
	require.NoError(t, r.SetChunk(1, 0, []byte("soon broken")))

	data, err := afero.ReadFile(fs, "r.mca")
	require.NoError(t, err)

	// Corrupt slot 1's compression id.
	h, err := section.ParseHeader(data)
	require.NoError(t, err)
	data[h.Locations[1].Offset+section.PayloadLengthSize] = 9

	report, err := Analyze(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, 2, report.Populated)
	require.Len(t, report.Corrupt, 1)
	require.Equal(t, 1, report.Corrupt[0].Index)
	require.ErrorIs(t, report.Corrupt[0].Err, errs.ErrUnknownCompression)
	require.Equal(t, 1, report.Schemes[format.CompressionGzip].Count)
}

func TestAnalyze_Truncated(t *testing.T) {
	_, err := Analyze(bytes.NewReader(make([]byte, 10)), 10)
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
}

func TestChunk(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, err := region.OpenFileRegion("r.mca", region.WithFs(fs))
	require.NoError(t, err)
	require.NoError(t, r.SetChunk(-3, 40, []byte("payload")))

	data, err := afero.ReadFile(fs, "r.mca")
	require.NoError(t, err)
	reader := bytes.NewReader(data)

	raw, found, err := Chunk(reader, int64(len(data)), 29, 8)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("payload"), raw)

	_, found, err = Chunk(reader, int64(len(data)), 0, 0)
	require.NoError(t, err)
	require.False(t, found)

	_, _, err = Chunk(reader, 100, 0, 0)
	require.NoError(t, err, "location table entry 0 is within the first 100 bytes")

	_, _, err = Chunk(reader, 2, 0, 0)
	require.ErrorIs(t, err, errs.ErrFormat)
}
