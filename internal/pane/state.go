// Package pane holds the per-pane browsing state and the coordinator that
// turns a pane's selection into a background transfer into its sibling.
package pane

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/pkg/filesystem"
)

// Exported variables.
var (
	ErrNoRoot        = errors.New("pane has no directory")
	ErrOutsideRoot   = errors.New("path is outside the pane's directory")
	ErrNotDirectory  = errors.New("not a directory")
	ErrAtTop         = errors.New("already at the filesystem root")
	ErrPaneBusy      = errors.New("pane is busy with another transfer")
	ErrInvalidFilter = errors.New("invalid filter pattern")
)

// ID identifies one side of the dual-pane browser.
type ID int

// Pane identifiers.
const (
	Left ID = iota
	Right
)

// String returns the string representation of ID
func (id ID) String() string {
	if id == Right {
		return "right"
	}

	return "left"
}

// Sibling returns the other pane.
func (id ID) Sibling() ID {
	if id == Left {
		return Right
	}

	return Left
}

// State is one pane's current directory, selection, listing and progress.
// All methods are safe for concurrent use.
type State struct {
	id ID
	fs filesystem.FileSystem

	mu        sync.RWMutex
	root      string
	selection []string
	entries   []Entry
	options   ListOptions
	progress  transfer.Progress
	transfer  string
}

// NewState creates an empty pane. It has no directory until SetRoot.
func NewState(id ID, fs filesystem.FileSystem) *State {
	return &State{id: id, fs: fs}
}

// ID returns which side this pane is.
func (s *State) ID() ID {
	return s.id
}

// Root returns the pane's current directory, or "" if none is set.
func (s *State) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.root
}

// SetRoot changes directory. path must be an existing directory; relative
// paths are taken against the current root. The selection is cleared.
func (s *State) SetRoot(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !filepath.IsAbs(path) {
		if s.root == "" {
			return fmt.Errorf("%w: %s is relative", ErrNoRoot, path)
		}

		path = filepath.Join(s.root, path)
	}

	path = filepath.Clean(path)

	info, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("cannot open %s: %w", path, ErrNotDirectory)
	}

	entries, err := List(s.fs, path, s.options)
	if err != nil {
		return err
	}

	s.root = path
	s.entries = entries
	s.selection = nil

	return nil
}

// Up moves to the parent directory.
func (s *State) Up() error {
	root := s.Root()
	if root == "" {
		return ErrNoRoot
	}

	parent := filepath.Dir(root)
	if parent == root {
		return ErrAtTop
	}

	return s.SetRoot(parent)
}

// Enter moves into the named child directory.
func (s *State) Enter(name string) error {
	if s.Root() == "" {
		return ErrNoRoot
	}

	if name == ".." {
		return s.Up()
	}

	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}

	return s.SetRoot(name)
}

// Refresh re-reads the listing and drops selected paths that no longer exist.
func (s *State) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.root == "" {
		return nil
	}

	entries, err := List(s.fs, s.root, s.options)
	if err != nil {
		return err
	}

	s.entries = entries
	s.selection = slices.DeleteFunc(s.selection, func(path string) bool {
		_, err := s.fs.Lstat(path)
		return err != nil
	})

	return nil
}

// Entries returns a copy of the current listing.
func (s *State) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.entries)
}

// Options returns the listing options.
func (s *State) Options() ListOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.options
}

// SetOptions replaces the listing options and refreshes.
func (s *State) SetOptions(opts ListOptions) error {
	if !ValidatePattern(opts.Pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, opts.Pattern)
	}

	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()

	return s.Refresh()
}

// Select adds path to the selection. path must lie strictly below the root.
func (s *State) Select(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.checkInsideLocked(path)
	if err != nil {
		return err
	}

	if !slices.Contains(s.selection, path) {
		s.selection = append(s.selection, path)
	}

	return nil
}

// Deselect removes path from the selection if present.
func (s *State) Deselect(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = filepath.Clean(path)
	s.selection = slices.DeleteFunc(s.selection, func(p string) bool { return p == path })
}

// Toggle flips path's membership in the selection.
func (s *State) Toggle(path string) error {
	if s.IsSelected(path) {
		s.Deselect(path)
		return nil
	}

	return s.Select(path)
}

// IsSelected reports whether path is selected.
func (s *State) IsSelected(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Contains(s.selection, filepath.Clean(path))
}

// SelectAll selects every listed entry, keeping earlier selections first.
func (s *State) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if !slices.Contains(s.selection, entry.Path) {
			s.selection = append(s.selection, entry.Path)
		}
	}
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = nil
}

// Selection returns the selected paths in the order they were selected.
func (s *State) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.selection)
}

// Summary describes the current selection.
func (s *State) Summary() Summary {
	return Summarize(s.fs, s.Selection())
}

// Progress returns the progress of the transfer writing into this pane,
// or the zero value when idle.
func (s *State) Progress() transfer.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.progress
}

// Busy returns the id of the transfer holding this pane, if any.
func (s *State) Busy() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.transfer, s.transfer != ""
}

func (s *State) setProgress(progress transfer.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = progress
}

// claim marks the pane as held by transfer id.
func (s *State) claim(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transfer != "" {
		return fmt.Errorf("%w: %s pane (%s)", ErrPaneBusy, s.id, s.transfer)
	}

	s.transfer = id

	return nil
}

func (s *State) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transfer == id {
		s.transfer = ""
	}
}

func (s *State) checkInsideLocked(path string) (string, error) {
	if s.root == "" {
		return "", ErrNoRoot
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}

	path = filepath.Clean(path)

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	return path, nil
}
