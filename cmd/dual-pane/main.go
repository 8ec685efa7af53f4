// Package main is the entry point for the dual-pane application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/dual-pane/internal/config"
	"github.com/joe/dual-pane/internal/headless"
	"github.com/joe/dual-pane/internal/logging"
	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/internal/tui"
	"github.com/joe/dual-pane/pkg/fileops"
	"github.com/joe/dual-pane/pkg/filesystem"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	fs := filesystem.NewRealFileSystem()
	engine := transfer.NewEngine(fileops.NewFileOps(fs, cfg.BlockSize), logger)
	engine.ProgressInterval = cfg.ProgressInterval

	if cfg.Headless() {
		return runHeadless(cfg, engine)
	}

	return runInteractive(cfg, fs, engine, logger)
}

// newLogger sends logs to --log-file when given. Headless runs without a log
// file log to stderr in console format; the UI owns the terminal otherwise.
func newLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	opts := logging.Options{Verbose: cfg.Verbose}

	switch {
	case cfg.LogFile != "":
		file, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return zerolog.Nop(), func() {}, err
		}

		opts.Writer = file

		return logging.New(opts), func() { _ = file.Close() }, nil
	case cfg.Headless() && cfg.Verbose:
		opts.Writer = os.Stderr
		opts.Console = true
	}

	return logging.New(opts), func() {}, nil
}

func runHeadless(cfg *config.Config, engine *transfer.Engine) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress io.Writer
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = os.Stderr
	}

	runner := &headless.Runner{Engine: engine, Progress: progress, Report: os.Stdout}

	outcome, err := runner.Run(ctx, transfer.Request{
		Sources:         cfg.Sources,
		DestinationRoot: cfg.Dest,
		Mode:            cfg.Mode(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if outcome.HasProblems() {
		return 1
	}

	return 0
}

func runInteractive(cfg *config.Config, fs filesystem.FileSystem, engine *transfer.Engine, logger zerolog.Logger) int {
	opts := pane.ListOptions{Pattern: cfg.Filter, IncludeHidden: cfg.ShowHidden}

	left := pane.NewState(pane.Left, fs)
	right := pane.NewState(pane.Right, fs)

	panes := []struct {
		state *pane.State
		root  string
	}{
		{left, cfg.LeftPath},
		{right, cfg.RightPath},
	}

	for _, p := range panes {
		err := p.state.SetOptions(opts)
		if err == nil {
			err = p.state.SetRoot(p.root)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	coordinator := pane.NewCoordinator(left, right, engine, logger)
	defer coordinator.Close()

	// Only use alt screen if stdout is a TTY
	err := tui.Run(tui.NewModel(coordinator, logger), term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
