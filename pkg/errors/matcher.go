package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Rules are tried in order, so a move whose removal failed with "permission
// denied" is reported as a delete problem rather than a permission problem.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []rule{
			{CategoryCancelled, []string{
				"transfer cancelled",
				"copy cancelled",
			}},
			{CategorySameFile, []string{
				"are the same file",
			}},
			{CategoryDelete, []string{
				"could not remove",
				"directory not empty",
				"cannot remove",
			}},
			{CategoryDiskSpace, []string{
				"no space left on device",
				"disk full",
				"quota exceeded",
			}},
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"file does not exist",
				"file not found",
				"path does not exist",
			}},
			{CategoryCopy, []string{
				"short write",
				"input/output error",
				"i/o error",
				"not a regular file",
			}},
		},
	}
}

type rule struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	rules []rule
}

// Match returns the category of the first rule with a matching pattern.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, r := range m.rules {
		for _, pattern := range r.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return r.category
			}
		}
	}

	return CategoryUnknown
}
