package errors

import "errors"

// Group is one section of a consolidated failure report.
type Group struct {
	Category ErrorCategory
	Errors   []ActionableError
}

// Title returns the category heading.
func (g Group) Title() string {
	return g.Category.Title()
}

// Suggestions returns the suggestions of the group's first error.
func (g Group) Suggestions() []string {
	if len(g.Errors) == 0 {
		return nil
	}

	return g.Errors[0].Suggestions()
}

// GroupByCategory buckets errs by category, in order of first appearance.
func GroupByCategory(errs []ActionableError) []Group {
	var groups []Group

	index := make(map[ErrorCategory]int)

	for _, err := range errs {
		i, ok := index[err.Category()]
		if !ok {
			i = len(groups)
			index[err.Category()] = i
			groups = append(groups, Group{Category: err.Category()})
		}

		groups[i].Errors = append(groups[i].Errors, err)
	}

	return groups
}

// PathError pairs a failed path with its error.
type PathError struct {
	Path string
	Err  error
}

// Report enriches every failure and groups the results.
func Report(enricher Enricher, failures []PathError) []Group {
	enriched := make([]ActionableError, 0, len(failures))

	for _, failure := range failures {
		if failure.Err == nil {
			continue
		}

		var actionable ActionableError
		if errors.As(enricher.Enrich(failure.Err, failure.Path), &actionable) {
			enriched = append(enriched, actionable)
		}
	}

	return GroupByCategory(enriched)
}
