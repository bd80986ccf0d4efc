package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// newLogger creates the diagnostics logger. Diagnostics go to stderr so that
// stdout only carries command output.
func newLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
