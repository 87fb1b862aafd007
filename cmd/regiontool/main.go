// Command regiontool inspects and maintains region files.
package main

import (
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var logLevel = zerolog.InfoLevel.String()

func main() {
	app := kingpin.New("regiontool", "Inspect and maintain region files.")
	app.Flag("log.level", "Log level: debug, info, warn, error.").Default(logLevel).EnumVar(&logLevel, "debug", "info", "warn", "error")

	addInfoCommand(app)
	addDumpCommand(app)
	addCompactCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// newLogger returns a console logger writing to stderr at the --log.level level.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func exitWithErr(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err)
	os.Exit(1)
}

func warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func heading(format string, args ...any) {
	color.New(color.Bold).Printf(format+"\n", args...)
}
