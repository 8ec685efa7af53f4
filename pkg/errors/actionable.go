// Package errors turns per-file transfer failures into actionable messages.
//
// Each error is matched to a category (permission, disk space, missing path,
// same file, cancelled, ...) and given suggestions the operator can act on.
// The consolidated failure report groups enriched errors by category so each
// suggestion is shown once per batch rather than once per file:
//
//	enricher := errors.NewEnricher()
//	var enriched []errors.ActionableError
//	for _, failure := range outcome.Failed {
//	    enriched = append(enriched, enricher.Enrich(failure.Reason, failure.Path).(errors.ActionableError))
//	}
//	for _, group := range errors.GroupByCategory(enriched) {
//	    fmt.Println(group.Title(), len(group.Errors))
//	}
package errors

import "strings"

// Exported constants.
const (
	CategoryCancelled  ErrorCategory = "cancelled"
	CategoryCopy       ErrorCategory = "copy"
	CategoryDelete     ErrorCategory = "delete"
	CategoryDiskSpace  ErrorCategory = "disk_space"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategorySameFile   ErrorCategory = "same_file"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// Title is a short heading for the category in failure reports.
func (c ErrorCategory) Title() string {
	switch c {
	case CategoryCancelled:
		return "Cancelled"
	case CategoryCopy:
		return "Read/write errors"
	case CategoryDelete:
		return "Copied, but source not removed"
	case CategoryDiskSpace:
		return "Out of disk space"
	case CategoryPath:
		return "Missing files or folders"
	case CategoryPermission:
		return "Permission denied"
	case CategorySameFile:
		return "Source and destination are the same file"
	default:
		return "Other errors"
	}
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list
// for display in the TUI. Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	// Format as bulleted list with two-space indent
	// Use strings.Builder for efficient string concatenation
	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}
