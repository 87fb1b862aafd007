package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/arloliu/region/internal/inspect"
)

// dumpCommand writes the decompressed payload of one chunk.
type dumpCommand struct {
	file *string
	x, z *int
	out  *string
}

func addDumpCommand(app *kingpin.Application) {
	cmd := &dumpCommand{}
	dump := app.Command("dump", "Write the decompressed payload of one chunk.").Action(cmd.run)
	cmd.file = dump.Arg("file", "Region file.").Required().ExistingFile()
	cmd.x = dump.Arg("x", "Chunk x coordinate.").Required().Int()
	cmd.z = dump.Arg("z", "Chunk z coordinate.").Required().Int()
	cmd.out = dump.Flag("out", "Output file; stdout if empty.").Short('o').String()
}

func (cmd *dumpCommand) run(_ *kingpin.ParseContext) error {
	data, err := cmd.read()
	if err != nil {
		exitWithErr(fmt.Errorf("%s: %w", *cmd.file, err))
	}

	var w io.Writer = os.Stdout
	if *cmd.out != "" {
		f, err := os.Create(*cmd.out)
		if err != nil {
			exitWithErr(fmt.Errorf("failed to create output: %w", err))
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		exitWithErr(fmt.Errorf("failed to write output: %w", err))
	}

	return nil
}

func (cmd *dumpCommand) read() ([]byte, error) {
	f, err := os.Open(*cmd.file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	data, found, err := inspect.Chunk(f, fi.Size(), *cmd.x, *cmd.z)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("chunk (%d, %d) is absent", *cmd.x, *cmd.z)
	}

	return data, nil
}
