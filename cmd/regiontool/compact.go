package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/region/format"
	"github.com/arloliu/region/region"
)

// compactCommand rewrites region files without unused sectors.
type compactCommand struct {
	files       *[]string
	compression *string
	working     *string
}

func addCompactCommand(app *kingpin.Application) {
	cmd := &compactCommand{}
	compact := app.Command("compact", "Rewrite region files without unused sectors, replacing them atomically.").Action(cmd.run)
	cmd.files = compact.Arg("file", "Region files to compact.").Required().ExistingFiles()
	cmd.compression = compact.Flag("compression", "Compression of the rewritten payloads.").Default("gzip").Enum("gzip", "zlib")
	cmd.working = compact.Flag("working", "In-memory compression while the file is loaded.").Default("s2").Enum("none", "gzip", "zlib", "lz4", "s2", "zstd")
}

func (cmd *compactCommand) run(_ *kingpin.ParseContext) error {
	final, err := format.ParseCompressionType(*cmd.compression)
	if err != nil {
		return err
	}
	working, err := format.ParseCompressionType(*cmd.working)
	if err != nil {
		return err
	}

	logger := newLogger()
	metrics := region.NewMetrics(prometheus.NewRegistry())

	for _, name := range *cmd.files {
		before, after, err := compactFile(name, working, final, region.WithLogger(logger), region.WithMetrics(metrics))
		if err != nil {
			exitWithErr(fmt.Errorf("%s: %w", name, err))
		}

		logger.Info().
			Str("file", name).
			Str("before", humanize.IBytes(uint64(before))). //nolint: gosec
			Str("after", humanize.IBytes(uint64(after))).   //nolint: gosec
			Msg("compacted region")
	}

	return nil
}

func compactFile(name string, working, final format.CompressionType, opts ...region.Option) (before, after int64, err error) {
	fi, err := os.Stat(name)
	if err != nil {
		return 0, 0, err
	}

	m, err := region.LoadMemoryRegion(name, working, opts...)
	if err != nil {
		return 0, 0, err
	}

	t, err := renameio.TempFile("", name)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = t.Cleanup() }()

	if err := t.Chmod(fi.Mode().Perm()); err != nil {
		return 0, 0, err
	}

	after, err = m.SaveTo(t, final)
	if err != nil {
		return 0, 0, err
	}

	if err := t.CloseAtomicallyReplace(); err != nil {
		return 0, 0, err
	}

	return fi.Size(), after, nil
}
