// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls logger setup.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Writer defaults to stderr.
	Writer io.Writer
	// NoColor disables ANSI colors in the console writer.
	NoColor bool
}

// Init installs a console logger as the global logger and returns it.
// An unknown level falls back to info.
func Init(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := ResolveLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		TimeFormat: time.TimeOnly,
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
	return log.Logger
}

// ResolveLevel parses a level name. Empty and unknown names yield info.
func ResolveLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

// Discard silences the global logger.
func Discard() {
	log.Logger = zerolog.Nop()
}
