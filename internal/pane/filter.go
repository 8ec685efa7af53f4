package pane

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFilter matches file names against a case-insensitive doublestar pattern.
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern
// Empty pattern matches all files
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude returns true if name matches the pattern.
func (f *GlobFilter) ShouldInclude(name string) bool {
	if f.isEmpty {
		return true
	}

	matched, err := doublestar.Match(f.normalizedPattern, strings.ToLower(name))
	if err != nil {
		// If pattern is invalid, don't match
		return false
	}

	return matched
}

// ValidatePattern reports whether pattern is usable as a listing filter.
func ValidatePattern(pattern string) bool {
	return pattern == "" || doublestar.ValidatePattern(pattern)
}
