package transfer

import (
	"path/filepath"

	"github.com/joe/dual-pane/pkg/filesystem"
)

// PlanEntry is one regular file to transfer.
type PlanEntry struct {
	SourcePath   string
	RelativePath string
	SizeBytes    int64
}

// Plan is the enumerated work for one request.
type Plan struct {
	Entries []PlanEntry

	// Directories holds every directory reached, relative to its source's
	// parent, in walk order. Parents always precede children.
	Directories []string

	// Skipped lists symbolic links and other non-regular files that were not followed.
	Skipped []string

	Warnings []Failure
}

// TotalBytes sums SizeBytes over all entries.
func (p *Plan) TotalBytes() int64 {
	var total int64
	for _, entry := range p.Entries {
		total += entry.SizeBytes
	}

	return total
}

// BuildPlan enumerates sources into a flat list of regular files.
//
// Each source is made relative to its own parent directory, so selecting
// /home/u/photos yields entries under "photos/" and selecting /home/u/a.txt
// yields "a.txt". Directories are walked recursively in lexical order;
// symbolic links are neither followed nor copied. Unreadable directories and
// sources that no longer exist become warnings and the rest of the walk goes on.
// A source selected twice is walked once; nested sources are each walked in
// full, so a file inside a selected folder that is also selected by itself
// lands both flat and under the folder.
func BuildPlan(fsys filesystem.FileSystem, sources []string) *Plan {
	plan := &Plan{}
	seen := make(map[string]bool)

	for _, source := range sources {
		source = filepath.Clean(source)
		if seen[source] {
			continue
		}

		seen[source] = true
		plan.walkSource(fsys, source)
	}

	return plan
}

func (p *Plan) walkSource(fsys filesystem.FileSystem, source string) {
	base := filepath.Dir(source)
	walker := filesystem.Walk(fsys, source)

	for walker.Step() {
		path := walker.Path()

		if err := walker.Err(); err != nil {
			p.Warnings = append(p.Warnings, Failure{
				Path:   path,
				Reason: &IOFailure{Op: "enumerate", Path: path, Err: err},
			})

			continue
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			p.Warnings = append(p.Warnings, Failure{
				Path:   path,
				Reason: &IOFailure{Op: "enumerate", Path: path, Err: err},
			})

			continue
		}

		info := walker.Stat()

		switch {
		case info.IsDir():
			p.Directories = append(p.Directories, rel)
		case info.Mode().IsRegular():
			p.Entries = append(p.Entries, PlanEntry{
				SourcePath:   path,
				RelativePath: rel,
				SizeBytes:    info.Size(),
			})
		default:
			p.Skipped = append(p.Skipped, path)
		}
	}
}
