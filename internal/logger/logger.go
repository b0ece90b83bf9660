// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

type Config struct {
	Level  string // trace, debug, info, warn, error; defaults to info
	Format string // console or json
	// Output defaults to stderr so command output on stdout stays clean.
	Output io.Writer
}

// New returns a logger tagged with the service name. Console format only
// colours output when writing to a terminal.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format != "json" {
		noColor := true
		if f, ok := out.(*os.File); ok {
			noColor = !isatty.IsTerminal(f.Fd())
		}
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: noColor}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "docket").Logger()
}
