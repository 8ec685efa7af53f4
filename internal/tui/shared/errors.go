package shared

import (
	"fmt"
	"strings"

	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/pkg/errors"
)

// ErrorLimitPerGroup is how many paths a report lists under one category.
const ErrorLimitPerGroup = 3

// ReportLines builds the consolidated failure report of outcome: one line
// per category with its count, a few affected paths and the category's
// suggestions. Warnings are reported after failures.
func ReportLines(outcome *transfer.Outcome, maxWidth int) []string {
	if outcome == nil || !outcome.HasProblems() {
		return nil
	}

	enricher := errors.NewEnricher()

	var lines []string

	lines = append(lines, renderGroups(errors.Report(enricher, pathErrors(outcome.Failed)), maxWidth, "")...)
	lines = append(lines, renderGroups(errors.Report(enricher, pathErrors(outcome.Warnings)), maxWidth, "skipped: ")...)

	return lines
}

// RenderReport joins ReportLines for display.
func RenderReport(outcome *transfer.Outcome, maxWidth int) string {
	return strings.Join(ReportLines(outcome, maxWidth), "\n")
}

func pathErrors(failures []transfer.Failure) []errors.PathError {
	out := make([]errors.PathError, 0, len(failures))
	for _, failure := range failures {
		out = append(out, errors.PathError{Path: failure.Path, Err: failure.Reason})
	}

	return out
}

func renderGroups(groups []errors.Group, maxWidth int, prefix string) []string {
	var lines []string

	for _, group := range groups {
		lines = append(lines, fmt.Sprintf("%s %s%s (%d)",
			ErrorSymbol(), prefix, RenderError(group.Title()), len(group.Errors)))

		for i, err := range group.Errors {
			if i == ErrorLimitPerGroup {
				lines = append(lines, RenderDim(fmt.Sprintf("    ... and %d more", len(group.Errors)-i)))
				break
			}

			lines = append(lines, "    "+FileItemErrorStyle().Render(TruncatePath(err.AffectedPath(), maxWidth)))
		}

		for _, suggestion := range group.Suggestions() {
			lines = append(lines, RenderDim("    • "+suggestion))
		}
	}

	return lines
}
