package main

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"

	"github.com/arloliu/region/format"
	"github.com/arloliu/region/internal/inspect"
	"github.com/arloliu/region/section"
)

// infoCommand prints a space and content summary for each region file.
type infoCommand struct {
	files *[]string
}

func addInfoCommand(app *kingpin.Application) {
	cmd := &infoCommand{}
	info := app.Command("info", "Print space usage and content summary of region files.").Action(cmd.run)
	cmd.files = info.Arg("file", "Region files to inspect.").Required().ExistingFiles()
}

func (cmd *infoCommand) run(_ *kingpin.ParseContext) error {
	for _, name := range *cmd.files {
		report, err := analyzeFile(name)
		if err != nil {
			exitWithErr(fmt.Errorf("%s: %w", name, err))
		}
		printReport(name, report)
	}

	return nil
}

func analyzeFile(name string) (*inspect.Report, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to read fileinfo: %w", err)
	}

	return inspect.Analyze(f, fi.Size())
}

func printReport(name string, r *inspect.Report) {
	heading("%s:", name)
	fmt.Printf(
		"\tsize: %v, chunks: %d/%d, allocated sectors: %d\n",
		humanize.IBytes(uint64(r.Size)), //nolint: gosec
		r.Populated,
		section.SlotCount,
		r.AllocatedSectors,
	)
	fmt.Printf(
		"\tlive payload: %v, orphaned: %v (%.1f%% of payload area)\n",
		humanize.IBytes(uint64(r.LiveBytes)),     //nolint: gosec
		humanize.IBytes(uint64(r.OrphanedBytes)), //nolint: gosec
		r.Waste()*100,
	)
	if r.Populated > 0 {
		fmt.Printf("\ttimestamps: %d .. %d\n", r.OldestTimestamp, r.NewestTimestamp)
	}

	schemes := make([]format.CompressionType, 0, len(r.Schemes))
	for c := range r.Schemes {
		schemes = append(schemes, c)
	}
	slices.SortFunc(schemes, func(a, b format.CompressionType) int { return cmp.Compare(a, b) })

	for _, c := range schemes {
		s := r.Schemes[c]
		fmt.Printf(
			"\t%s: %s chunks, %v raw, %v compressed, savings %.1f%%\n",
			c,
			humanize.Comma(int64(s.Count)),
			humanize.IBytes(uint64(s.OriginalSize)),   //nolint: gosec
			humanize.IBytes(uint64(s.CompressedSize)), //nolint: gosec
			s.SpaceSavings(),
		)
	}

	for _, group := range r.Duplicates {
		coords := make([]string, 0, len(group))
		for _, index := range group {
			x, z := section.SlotCoords(index)
			coords = append(coords, fmt.Sprintf("(%d,%d)", x, z))
		}
		fmt.Printf("\tidentical chunks: %v\n", coords)
	}

	for _, issue := range r.Corrupt {
		x, z := section.SlotCoords(issue.Index)
		warn("\tchunk (%d,%d): %v", x, z, issue.Err)
	}
}
