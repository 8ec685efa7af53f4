// Package headless runs a single copy or move from the command line,
// drawing a terminal progress bar and printing the consolidated report.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/pkg/errors"
	"github.com/joe/dual-pane/pkg/formatters"
)

// ProgressWidth is the width of the progress bar in columns.
const ProgressWidth = 40

// Runner executes one request and reports on it.
type Runner struct {
	Engine *transfer.Engine
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
	// Report receives the summary and failure report.
	Report io.Writer

	bar   *progressbar.ProgressBar
	files int
}

// Run executes req and prints its outcome. The error is non-nil only when
// the request was rejected before any work; per-file problems are in the
// returned outcome.
func (r *Runner) Run(ctx context.Context, req transfer.Request) (*transfer.Outcome, error) {
	previous := r.Engine.GetEventEmitter()
	r.Engine.SetEventEmitter(r)

	defer r.Engine.SetEventEmitter(previous)

	outcome, err := r.Engine.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s refused: %w", req.Mode, err)
	}

	WriteReport(r.Report, req.Mode, outcome)

	return outcome, nil
}

// Emit implements transfer.EventEmitter.
func (r *Runner) Emit(event transfer.Event) {
	if r.Progress == nil {
		return
	}

	switch ev := event.(type) {
	case transfer.TransferStarted:
		r.files = ev.Files
		r.bar = progressbar.NewOptions64(max(ev.Bytes, 1),
			progressbar.OptionSetDescription(fmt.Sprintf("%s 0/%d", ev.Mode, ev.Files)),
			progressbar.OptionSetWriter(r.Progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(ProgressWidth),
			progressbar.OptionThrottle(transfer.DefaultProgressInterval),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(r.Progress, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	case transfer.TransferProgress:
		if r.bar == nil {
			return
		}

		r.bar.Describe(fmt.Sprintf("%d/%d %s", ev.Progress.Completed, r.files, ev.CurrentFile))
		_ = r.bar.Set64(ev.BytesCopied)
	case transfer.TransferComplete:
		if r.bar != nil {
			_ = r.bar.Finish()
		}
	}
}

// WriteReport prints a one-line summary followed by failures grouped by
// category, each group with its suggestions.
func WriteReport(w io.Writer, mode transfer.Mode, outcome *transfer.Outcome) {
	if w == nil || outcome == nil {
		return
	}

	status := "done"
	if outcome.Cancelled {
		status = "cancelled"
	}

	fmt.Fprintf(w, "%s %s: %d of %d files, %s in %s (%s)\n",
		mode, status, outcome.Succeeded, outcome.Total(),
		formatters.FormatBytes(outcome.BytesCopied),
		formatters.FormatDuration(outcome.Metrics.Elapsed),
		formatters.FormatRate(outcome.Metrics.Rate(outcome.BytesCopied)))

	enricher := errors.NewEnricher()
	writeGroups(w, "failed", errors.Report(enricher, pathErrors(outcome.Failed)))
	writeGroups(w, "skipped", errors.Report(enricher, pathErrors(outcome.Warnings)))
}

func writeGroups(w io.Writer, label string, groups []errors.Group) {
	for _, group := range groups {
		fmt.Fprintf(w, "\n%s: %s (%d)\n", label, group.Title(), len(group.Errors))

		for _, err := range group.Errors {
			fmt.Fprintf(w, "  %s\n    %s\n", err.AffectedPath(), err.Error())
		}

		for _, suggestion := range group.Suggestions() {
			fmt.Fprintf(w, "  • %s\n", suggestion)
		}
	}
}

func pathErrors(failures []transfer.Failure) []errors.PathError {
	out := make([]errors.PathError, 0, len(failures))
	for _, failure := range failures {
		out = append(out, errors.PathError{Path: failure.Path, Err: failure.Reason})
	}

	return out
}
