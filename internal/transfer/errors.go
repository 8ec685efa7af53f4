package transfer

import (
	"errors"
	"fmt"
)

// Exported variables.
var (
	// ErrPreconditionFailed aborts a transfer before any work starts.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrIOFailure marks a read, write or stat error on a specific path.
	ErrIOFailure = errors.New("i/o failure")
	// ErrPartialDeletion marks a moved file whose source could not be removed.
	ErrPartialDeletion = errors.New("copied but source not removed")
	// ErrCancelled marks entries that were not transferred because the transfer was cancelled.
	ErrCancelled = errors.New("transfer cancelled")
)

// PreconditionError explains why a request was rejected.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPreconditionFailed, e.Reason)
}

// Is makes errors.Is(err, ErrPreconditionFailed) true.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// IOFailure is a read/write/stat error on one path.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Is makes errors.Is(err, ErrIOFailure) true.
func (e *IOFailure) Is(target error) bool {
	return target == ErrIOFailure
}

func (e *IOFailure) Unwrap() error {
	return e.Err
}

// FailedPath returns Path.
func (e *IOFailure) FailedPath() string {
	return e.Path
}

// PartialDeletionFailure reports a Move whose copy succeeded but whose source
// could not be removed. The file now exists at both locations.
type PartialDeletionFailure struct {
	Source      string
	Destination string
	Err         error
}

func (e *PartialDeletionFailure) Error() string {
	return fmt.Sprintf("copied to %s but could not remove %s: %v", e.Destination, e.Source, e.Err)
}

// Is makes errors.Is(err, ErrPartialDeletion) true.
func (e *PartialDeletionFailure) Is(target error) bool {
	return target == ErrPartialDeletion
}

func (e *PartialDeletionFailure) Unwrap() error {
	return e.Err
}

// FailedPath returns the source, which is left behind.
func (e *PartialDeletionFailure) FailedPath() string {
	return e.Source
}

// Failure is one row of the consolidated failure report.
type Failure struct {
	Path   string
	Reason error
}

// Outcome is the result of one transfer.
// Succeeded + len(Failed) always equals the number of plan entries.
type Outcome struct {
	Succeeded   int
	Failed      []Failure
	BytesCopied int64
	Cancelled   bool
	Metrics     Metrics

	// Warnings lists problems that did not belong to any plan entry:
	// unreadable directories and vanished sources found while enumerating,
	// and empty directories that could not be created.
	Warnings []Failure
}

// Total returns the number of plan entries the outcome accounts for.
func (o *Outcome) Total() int {
	return o.Succeeded + len(o.Failed)
}

// HasProblems reports whether the outcome carries any failure or warning.
func (o *Outcome) HasProblems() bool {
	return len(o.Failed) > 0 || len(o.Warnings) > 0
}
