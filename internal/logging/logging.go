// Package logging builds the zerolog loggers used by the engine, coordinator and UIs.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "15:04:05"

// Options configures New.
type Options struct {
	// Writer receives log output. Nil disables logging entirely; the TUI
	// owns the terminal, so it only logs when a log file is given.
	Writer io.Writer
	// Verbose lowers the level from info to debug.
	Verbose bool
	// Console renders human-readable lines instead of JSON.
	Console bool
}

// New creates a logger from opts.
func New(opts Options) zerolog.Logger {
	if opts.Writer == nil {
		return zerolog.Nop()
	}

	output := opts.Writer
	if opts.Console {
		output = zerolog.ConsoleWriter{
			Out:        opts.Writer,
			TimeFormat: TimeFormat,
			NoColor:    true,
		}
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// OpenFile opens path for appending log output, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	//nolint:gosec // Log path comes from the operator's own command line
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}
