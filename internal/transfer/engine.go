// Package transfer enumerates selections into plans and executes them as
// copy or move operations with cancellable, throttled progress reporting.
package transfer

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/joe/dual-pane/pkg/fileops"
	"github.com/joe/dual-pane/pkg/formatters"
)

// DefaultProgressInterval is the minimum time between in-file progress events.
const DefaultProgressInterval = 100 * time.Millisecond

// Request describes one copy or move.
type Request struct {
	// ID labels the events of this transfer. It may be empty.
	ID              string
	Sources         []string
	DestinationRoot string
	Mode            Mode
}

// Engine executes transfer requests. One Engine may run several requests
// concurrently; each Execute call keeps its own state.
type Engine struct {
	FileOps          *fileops.FileOps
	ProgressInterval time.Duration
	TimeProvider     TimeProvider
	Logger           zerolog.Logger
	emitter          EventEmitter
}

// NewEngine creates an engine that copies through ops.
func NewEngine(ops *fileops.FileOps, logger zerolog.Logger) *Engine {
	return &Engine{
		FileOps:          ops,
		ProgressInterval: DefaultProgressInterval,
		TimeProvider:     RealTimeProvider{},
		Logger:           logger,
	}
}

// SetEventEmitter sets the event emitter.
// The emitter is optional - if nil, no events will be emitted.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitter = emitter
}

// GetEventEmitter returns the current event emitter.
func (e *Engine) GetEventEmitter() EventEmitter {
	return e.emitter
}

// Execute validates req, builds its plan and transfers every entry.
//
// A non-nil error is always a *PreconditionError and means nothing was
// touched. Otherwise every plan entry is accounted for in the returned
// Outcome, either as a success or as a Failure; per-file errors never abort
// the remaining entries. Cancelling ctx stops the transfer between blocks and
// records every unfinished entry as failed with ErrCancelled.
func (e *Engine) Execute(ctx context.Context, req Request) (*Outcome, error) {
	err := e.validate(req)
	if err != nil {
		return nil, err
	}

	log := e.Logger.With().Str("transfer", req.ID).Str("mode", req.Mode.String()).Logger()

	plan := BuildPlan(e.FileOps.FS, req.Sources)
	for _, path := range plan.Skipped {
		log.Debug().Str("path", path).Msg("skipping non-regular file")
	}

	for _, warning := range plan.Warnings {
		log.Warn().Str("path", warning.Path).Err(warning.Reason).Msg("enumeration problem")
	}

	run := &execution{
		engine:  e,
		req:     req,
		plan:    plan,
		log:     log,
		outcome: &Outcome{Warnings: append([]Failure(nil), plan.Warnings...)},
		progress: Progress{
			Total: uint64(len(plan.Entries)),
		},
	}

	log.Info().
		Int("files", len(plan.Entries)).
		Str("size", formatters.FormatBytes(plan.TotalBytes())).
		Str("destination", req.DestinationRoot).
		Msg("transfer started")

	e.emit(TransferStarted{
		ID:          req.ID,
		Mode:        req.Mode,
		Files:       len(plan.Entries),
		Bytes:       plan.TotalBytes(),
		Destination: req.DestinationRoot,
	})

	started := e.TimeProvider.Now()

	run.createDirectories()
	run.transferEntries(ctx)

	run.outcome.Metrics.Elapsed = e.TimeProvider.Now().Sub(started)

	log.Info().
		Int("succeeded", run.outcome.Succeeded).
		Int("failed", len(run.outcome.Failed)).
		Int("warnings", len(run.outcome.Warnings)).
		Bool("cancelled", run.outcome.Cancelled).
		Str("elapsed", formatters.FormatDuration(run.outcome.Metrics.Elapsed)).
		Str("rate", formatters.FormatRate(run.outcome.Metrics.Rate(run.outcome.BytesCopied))).
		Msg("transfer finished")

	e.emit(TransferComplete{ID: req.ID, Outcome: run.outcome})

	return run.outcome, nil
}

// emit sends an event if an emitter is configured.
func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}

func (e *Engine) validate(req Request) error {
	if !req.Mode.valid() {
		return preconditionf("unknown transfer mode %d", req.Mode)
	}

	if len(req.Sources) == 0 {
		return preconditionf("nothing selected")
	}

	for _, source := range req.Sources {
		if !filepath.IsAbs(source) {
			return preconditionf("source %q is not an absolute path", source)
		}
	}

	if req.DestinationRoot == "" {
		return preconditionf("no destination directory")
	}

	info, err := e.FileOps.FS.Stat(req.DestinationRoot)
	if err != nil {
		return preconditionf("destination %s is not accessible: %v", req.DestinationRoot, err)
	}

	if !info.IsDir() {
		return preconditionf("destination %s is not a directory", req.DestinationRoot)
	}

	return nil
}

// execution holds the mutable state of a single Execute call.
type execution struct {
	engine   *Engine
	req      Request
	plan     *Plan
	log      zerolog.Logger
	outcome  *Outcome
	progress Progress

	currentFile string
	lastPublish time.Time
}

// createDirectories materializes every enumerated directory, including
// empty ones, before any file is written.
func (x *execution) createDirectories() {
	for _, rel := range x.plan.Directories {
		dir := filepath.Join(x.req.DestinationRoot, rel)

		err := x.engine.FileOps.FS.MkdirAll(dir, fileops.DefaultDirPermissions)
		if err != nil {
			x.log.Warn().Str("path", dir).Err(err).Msg("cannot create directory")
			x.outcome.Warnings = append(x.outcome.Warnings, Failure{
				Path:   dir,
				Reason: &IOFailure{Op: "mkdir", Path: dir, Err: err},
			})
		}
	}
}

func (x *execution) transferEntries(ctx context.Context) {
	x.publish(true)

	for i, entry := range x.plan.Entries {
		if ctx.Err() != nil {
			x.cancelRemaining(x.plan.Entries[i:])
			break
		}

		x.currentFile = entry.RelativePath
		x.transferEntry(ctx, entry)

		x.progress.Completed = uint64(i + 1)
		x.progress.Partial = 0
		x.publish(true)
	}
}

func (x *execution) transferEntry(ctx context.Context, entry PlanEntry) {
	destination := filepath.Join(x.req.DestinationRoot, entry.RelativePath)

	stats, err := x.engine.FileOps.CopyFile(entry.SourcePath, destination, x.onBytes, ctx.Done())
	if stats != nil {
		x.outcome.BytesCopied += stats.BytesCopied
		x.outcome.Metrics.add(stats.ReadTime, stats.WriteTime)
	}

	if err != nil {
		x.fail(entry, copyFailure(entry, err))

		if errors.Is(err, fileops.ErrCopyCancelled) {
			x.outcome.Cancelled = true
		}

		return
	}

	if stats.MetadataErr != nil {
		x.log.Debug().Str("path", destination).Err(stats.MetadataErr).Msg("metadata not preserved")
	}

	if x.req.Mode == Move {
		err = x.engine.FileOps.Remove(entry.SourcePath)
		if err != nil {
			x.fail(entry, &PartialDeletionFailure{
				Source:      entry.SourcePath,
				Destination: destination,
				Err:         err,
			})

			return
		}
	}

	x.outcome.Succeeded++
	x.log.Debug().Str("path", entry.RelativePath).Int64("bytes", entry.SizeBytes).Msg("transferred")
}

func (x *execution) cancelRemaining(entries []PlanEntry) {
	x.outcome.Cancelled = true
	for _, entry := range entries {
		x.outcome.Failed = append(x.outcome.Failed, Failure{Path: entry.SourcePath, Reason: ErrCancelled})
	}

	x.log.Info().Int("unattempted", len(entries)).Msg("transfer cancelled")
}

func (x *execution) fail(entry PlanEntry, reason error) {
	failure := Failure{Path: entry.SourcePath, Reason: reason}
	x.outcome.Failed = append(x.outcome.Failed, failure)

	x.log.Error().Str("path", entry.SourcePath).Err(reason).Msg("transfer failed")
	x.engine.emit(FileFailed{ID: x.req.ID, Failure: failure})
}

// onBytes is the fileops progress callback for the entry in flight.
func (x *execution) onBytes(transferred, total int64, _ string) {
	x.progress.Partial = partialFraction(transferred, total)
	x.publish(false)
}

// publish emits the current progress unless an in-file update arrives
// sooner than ProgressInterval after the previous one.
func (x *execution) publish(force bool) {
	now := x.engine.TimeProvider.Now()
	if !force && now.Sub(x.lastPublish) < x.engine.ProgressInterval {
		return
	}

	x.lastPublish = now
	x.engine.emit(TransferProgress{
		ID:          x.req.ID,
		Progress:    x.progress,
		CurrentFile: x.currentFile,
		BytesCopied: x.outcome.BytesCopied,
	})
}

// copyFailure converts a fileops error into the failure taxonomy.
func copyFailure(entry PlanEntry, err error) error {
	if errors.Is(err, fileops.ErrCopyCancelled) {
		return ErrCancelled
	}

	var copyErr *fileops.CopyError
	if errors.As(err, &copyErr) {
		return &IOFailure{Op: copyErr.Op, Path: copyErr.Path, Err: copyErr.Err}
	}

	return &IOFailure{Op: "copy", Path: entry.SourcePath, Err: err}
}
