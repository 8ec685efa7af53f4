package pane

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joe/dual-pane/pkg/filesystem"
)

// Show selects which kinds of entries a listing includes.
type Show int

// Listing kinds.
const (
	ShowAll Show = iota
	ShowFolders
	ShowFiles
)

// String returns the string representation of Show
func (s Show) String() string {
	switch s {
	case ShowAll:
		return "all"
	case ShowFolders:
		return "folders"
	case ShowFiles:
		return "files"
	default:
		return "unknown"
	}
}

// Next cycles all -> folders -> files -> all.
func (s Show) Next() Show {
	return (s + 1) % (ShowFiles + 1)
}

// SortOrder selects how files are ordered. Directories are always by name.
type SortOrder int

// Sort orders.
const (
	SortByName SortOrder = iota
	SortBySize
)

// String returns the string representation of SortOrder
func (o SortOrder) String() string {
	if o == SortBySize {
		return "size"
	}

	return "name"
}

// ListOptions controls what List returns.
type ListOptions struct {
	Show          Show
	Sort          SortOrder
	IncludeHidden bool
	// Pattern is a doublestar glob applied to file names only.
	Pattern string
	// Query is a case-insensitive substring matched against every name.
	Query string
}

// Entry is one row of a directory listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Symlink bool
	Size    int64
	ModTime time.Time
}

// DisplayName marks directories with a trailing slash.
func (e Entry) DisplayName() string {
	if e.IsDir {
		return e.Name + "/"
	}

	return e.Name
}

// List reads dir and returns its direct children: directories first, then
// files, each group ordered case-insensitively by name unless opts asks for
// files by size. Symbolic links are listed as files and never followed.
func List(fsys filesystem.FileSystem, dir string, opts ListOptions) ([]Entry, error) {
	infos, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	filter := NewGlobFilter(opts.Pattern)
	query := strings.ToLower(opts.Query)

	var dirs, files []Entry

	for _, info := range infos {
		name := info.Name()

		if !opts.IncludeHidden && IsHiddenName(name) {
			continue
		}

		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}

		entry := Entry{
			Name:    name,
			Path:    fsys.Join(dir, name),
			IsDir:   info.IsDir(),
			Symlink: info.Mode()&os.ModeSymlink != 0,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}

		if entry.IsDir {
			if opts.Show != ShowFiles {
				dirs = append(dirs, entry)
			}

			continue
		}

		if opts.Show != ShowFolders && filter.ShouldInclude(name) {
			files = append(files, entry)
		}
	}

	sort.SliceStable(dirs, func(i, j int) bool { return lessFold(dirs[i].Name, dirs[j].Name) })

	if opts.Sort == SortBySize {
		sort.SliceStable(files, func(i, j int) bool {
			if files[i].Size != files[j].Size {
				return files[i].Size < files[j].Size
			}

			return lessFold(files[i].Name, files[j].Name)
		})
	} else {
		sort.SliceStable(files, func(i, j int) bool { return lessFold(files[i].Name, files[j].Name) })
	}

	return append(dirs, files...), nil
}

// IsHiddenName reports whether a file or directory name is hidden.
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}

	return a < b
}
