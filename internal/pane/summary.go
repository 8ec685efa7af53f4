package pane

import (
	"fmt"

	"github.com/joe/dual-pane/pkg/filesystem"
	"github.com/joe/dual-pane/pkg/formatters"
)

// Summary describes a set of selected paths.
type Summary struct {
	Items       int
	Files       int
	Directories int
	// Bytes counts regular files only; directories are not descended.
	Bytes int64
}

// Summarize stats each path. Paths that cannot be stat'ed still count as items.
func Summarize(fsys filesystem.FileSystem, paths []string) Summary {
	summary := Summary{Items: len(paths)}

	for _, path := range paths {
		info, err := fsys.Lstat(path)
		if err != nil {
			continue
		}

		switch {
		case info.IsDir():
			summary.Directories++
		case info.Mode().IsRegular():
			summary.Files++
			summary.Bytes += info.Size()
		}
	}

	return summary
}

func (s Summary) String() string {
	if s.Items == 0 {
		return "nothing selected"
	}

	return fmt.Sprintf("%d selected (%d files, %d folders), %s in files",
		s.Items, s.Files, s.Directories, formatters.FormatBytes(s.Bytes))
}
