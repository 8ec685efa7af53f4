package errors_test

import (
	"testing"

	"github.com/joe/dual-pane/pkg/errors"
)

func TestActionableError_Accessors(t *testing.T) {
	t.Parallel()

	suggestions := []string{"Check permissions with 'ls -la /path'", "Ensure you have read/write access"}
	err := errors.NewActionableError("permission denied", errors.CategoryPermission, suggestions, "/path")

	if err.Error() != "permission denied" || err.OriginalError() != "permission denied" {
		t.Errorf("unexpected message %q / %q", err.Error(), err.OriginalError())
	}

	if err.Category() != errors.CategoryPermission {
		t.Errorf("expected category %q, got %q", errors.CategoryPermission, err.Category())
	}

	if err.AffectedPath() != "/path" {
		t.Errorf("expected path %q, got %q", "/path", err.AffectedPath())
	}

	if len(err.Suggestions()) != len(suggestions) {
		t.Errorf("expected %d suggestions, got %d", len(suggestions), len(err.Suggestions()))
	}
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "no suggestions",
			err:      errors.NewActionableError("x", errors.CategoryUnknown, nil, ""),
			expected: "",
		},
		{
			name:     "single suggestion",
			err:      errors.NewActionableError("x", errors.CategoryDiskSpace, []string{"Run 'df -h'"}, ""),
			expected: "  • Run 'df -h'",
		},
		{
			name: "multiple suggestions",
			err: errors.NewActionableError("x", errors.CategoryPermission,
				[]string{"Check permissions", "Try again"}, ""),
			expected: "  • Check permissions\n  • Try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := errors.FormatSuggestions(tt.err); got != tt.expected {
				t.Errorf("expected:\n%q\ngot:\n%q", tt.expected, got)
			}
		})
	}
}

func TestErrorCategory_TitlesAreDistinct(t *testing.T) {
	t.Parallel()

	categories := []errors.ErrorCategory{
		errors.CategoryCancelled,
		errors.CategoryCopy,
		errors.CategoryDelete,
		errors.CategoryDiskSpace,
		errors.CategoryPath,
		errors.CategoryPermission,
		errors.CategorySameFile,
		errors.CategoryUnknown,
	}

	seen := make(map[string]bool)
	for _, cat := range categories {
		title := cat.Title()
		if title == "" || seen[title] {
			t.Errorf("category %q has an empty or duplicate title %q", cat, title)
		}

		seen[title] = true
	}
}
