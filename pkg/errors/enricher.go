package errors

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"regexp"
	"syscall"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// Locator is implemented by errors that know which path they are about.
// For a move whose source could not be removed that is the source, since it
// is the file the user has to clean up.
type Locator interface {
	FailedPath() string
}

// NewEnricher creates a new Enricher with default pattern matcher and suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// operations names the verbs that prefix "<op> <path>: <cause>" messages
// from os, fileops and transfer.
const operations = `(?:open|stat|lstat|mkdir|create|read|write|close|remove|enumerate|chmod|chtimes)`

// unexported variables.
var (
	//nolint:gochecknoglobals // Compiled once, shared by every enricher
	messagePathPatterns = []*regexp.Regexp{
		// transfer: "copied to DST but could not remove SRC: cause"
		regexp.MustCompile(`could not remove (.+?): `),
		// fileops: "failed to remove SRC: cause"
		regexp.MustCompile(`failed to remove (.+?): `),
		regexp.MustCompile(`\b` + operations + ` ([A-Za-z]:[\\/][^:]+?):`),
		regexp.MustCompile(`\b` + operations + ` ([./~][^:]*?):`),
	}
)

// enricher is the concrete implementation of Enricher.
type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich categorizes err and attaches suggestions for affectedPath.
// An ActionableError is returned unchanged. When affectedPath is empty the
// path is taken from err itself.
func (e *enricher) Enrich(err error, affectedPath string) error {
	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	if affectedPath == "" {
		affectedPath = locate(err)
	}

	category := e.classify(err)

	return NewActionableError(
		err.Error(),
		category,
		e.generator.Generate(category, affectedPath),
		affectedPath,
	)
}

// classify prefers the message rules, which know the transfer wrappers
// (a failed removal is a delete problem whatever its cause), and falls back
// to the wrapped errno for messages they do not recognize.
func (e *enricher) classify(err error) ErrorCategory {
	category := e.matcher.Match(err.Error())
	if category != CategoryUnknown {
		return category
	}

	switch {
	case errors.Is(err, os.ErrPermission):
		return CategoryPermission
	case errors.Is(err, os.ErrNotExist):
		return CategoryPath
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return CategoryDiskSpace
	case errors.Is(err, io.ErrShortWrite), errors.Is(err, syscall.EIO):
		return CategoryCopy
	default:
		return CategoryUnknown
	}
}

// locate finds the path err is about, trying typed errors before the message.
func locate(err error) string {
	var located Locator
	if errors.As(err, &located) {
		return located.FailedPath()
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Old
	}

	return pathFromMessage(err.Error())
}

func pathFromMessage(msg string) string {
	for _, pattern := range messagePathPatterns {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 && matches[1] != "" {
			return matches[1]
		}
	}

	return ""
}
