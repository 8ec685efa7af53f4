// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/pkg/fileops"
)

// Exported constants.
const (
	DefaultProgressInterval = transfer.DefaultProgressInterval
)

// Exported variables.
var (
	ErrConflictingModes = errors.New("--copy and --move are mutually exclusive")
	ErrMissingSources   = errors.New("headless mode needs at least one source")
	ErrMissingDest      = errors.New("headless mode needs --dest")
	ErrSourcesWithoutOp = errors.New("sources given without --copy or --move")
)

// Config holds the application configuration
type Config struct {
	LeftPath         string        `arg:"-l,--left" help:"Starting directory of the left pane (default: working directory)"`
	RightPath        string        `arg:"-r,--right" help:"Starting directory of the right pane (default: home directory)"`
	BlockSize        int           `arg:"--block-size" default:"1048576" help:"Copy block size in bytes (minimum 4096)"`
	Filter           string        `arg:"-f,--filter" help:"Initial listing filter, a glob such as *.{jpg,png}"`
	ShowHidden       bool          `arg:"--hidden" help:"Show dot-files in listings"`
	LogFile          string        `arg:"--log-file" help:"Append a JSON log to this file"`
	Verbose          bool          `arg:"-v,--verbose" help:"Log at debug level"`
	ProgressInterval time.Duration `arg:"--progress-interval" default:"100ms" help:"Minimum time between progress updates"`

	// Headless mode
	Copy    bool     `arg:"--copy" help:"Copy SOURCES into --dest without starting the UI"`
	Move    bool     `arg:"--move" help:"Move SOURCES into --dest without starting the UI"`
	Dest    string   `arg:"-d,--dest" help:"Destination directory for --copy/--move"`
	Sources []string `arg:"positional" help:"Files or directories to transfer in headless mode"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "A dual-pane terminal file manager for copying and moving files between two directories"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "dual-pane 1.0.0"
}

// Headless reports whether a transfer was requested on the command line.
func (cfg *Config) Headless() bool {
	return cfg.Copy || cfg.Move
}

// Mode returns the requested headless transfer mode.
func (cfg *Config) Mode() transfer.Mode {
	if cfg.Move {
		return transfer.Move
	}

	return transfer.Copy
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := defaults()

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// ParseArgs parses args (without the program name) the way ParseFlags parses os.Args.
func ParseArgs(args []string) (*Config, error) {
	cfg := defaults()

	parser, err := arg.NewParser(arg.Config{Program: "dual-pane"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	err = parser.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.BlockSize < fileops.MinBlockSize {
		return nil, fmt.Errorf("block size %d is below the minimum of %d bytes", cfg.BlockSize, fileops.MinBlockSize)
	}

	if cfg.ProgressInterval < 0 {
		return nil, fmt.Errorf("progress interval must not be negative: %s", cfg.ProgressInterval)
	}

	err := ValidateFilePattern(cfg.Filter)
	if err != nil {
		return nil, err
	}

	if cfg.Headless() {
		err = cfg.validateHeadless()
	} else {
		err = cfg.resolvePanePaths()
	}

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateFilePattern checks that pattern is a valid doublestar glob.
func ValidateFilePattern(pattern string) error {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid filter pattern: %q", pattern)
	}

	return nil
}

// ValidateDirectory checks that path exists and is a directory.
func ValidateDirectory(label, path string) error {
	if path == "" {
		return fmt.Errorf("%s path is required", label)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s path does not exist: %s", label, path)
	}

	if err != nil {
		return fmt.Errorf("cannot access %s path: %w", label, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s path is not a directory: %s", label, path)
	}

	return nil
}

func defaults() *Config {
	return &Config{
		BlockSize:        fileops.BlockSize,
		ProgressInterval: DefaultProgressInterval,
	}
}

// resolvePanePaths fills in default pane directories and makes them absolute.
func (cfg *Config) resolvePanePaths() error {
	if len(cfg.Sources) > 0 {
		return ErrSourcesWithoutOp
	}

	if cfg.LeftPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}

		cfg.LeftPath = wd
	}

	if cfg.RightPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}

		cfg.RightPath = home
	}

	panes := []struct {
		label string
		path  *string
	}{
		{"left", &cfg.LeftPath},
		{"right", &cfg.RightPath},
	}

	for _, p := range panes {
		abs, err := filepath.Abs(*p.path)
		if err != nil {
			return fmt.Errorf("cannot resolve %s path: %w", p.label, err)
		}

		err = ValidateDirectory(p.label, abs)
		if err != nil {
			return err
		}

		*p.path = abs
	}

	return nil
}

func (cfg *Config) validateHeadless() error {
	if cfg.Copy && cfg.Move {
		return ErrConflictingModes
	}

	if len(cfg.Sources) == 0 {
		return ErrMissingSources
	}

	if cfg.Dest == "" {
		return ErrMissingDest
	}

	for i, source := range cfg.Sources {
		abs, err := filepath.Abs(source)
		if err != nil {
			return fmt.Errorf("cannot resolve source %s: %w", source, err)
		}

		cfg.Sources[i] = abs
	}

	abs, err := filepath.Abs(cfg.Dest)
	if err != nil {
		return fmt.Errorf("cannot resolve destination: %w", err)
	}

	cfg.Dest = abs

	return ValidateDirectory("destination", cfg.Dest)
}
