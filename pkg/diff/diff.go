// Package diff computes path-keyed deltas between two flattened trees.
//
// Both sides of a comparison are maps of repo-relative path to (OID, mode).
// The same engine therefore serves tree-vs-tree, HEAD-vs-index, and
// index-vs-worktree comparisons; callers only differ in how they build the
// maps.
package diff

import "grit/pkg/object"

// Status classifies a single file change.
type Status int

const (
	Added Status = iota
	Deleted
	Modified
	Renamed
	Copied
)

// Char returns the single-letter form of the status (A/D/M/R/C).
func (s Status) Char() byte {
	switch s {
	case Added:
		return 'A'
	case Deleted:
		return 'D'
	case Modified:
		return 'M'
	case Renamed:
		return 'R'
	case Copied:
		return 'C'
	}
	return '?'
}

// Entry is one side of a comparison for a single path.
type Entry struct {
	Oid  object.Oid
	Mode object.FileMode
}

// Delta is one file change. Path is the new path; OldPath is set for
// renames and copies only.
type Delta struct {
	Status  Status
	Path    string
	OldPath string
	OldOid  object.Oid
	NewOid  object.Oid
	OldMode object.FileMode
	NewMode object.FileMode
}

// Stats aggregates delta counts by status.
type Stats struct {
	Added    int
	Deleted  int
	Modified int
	Renamed  int
	Copied   int
}

// Total returns the number of changed files.
func (s Stats) Total() int {
	return s.Added + s.Deleted + s.Modified + s.Renamed + s.Copied
}

// Diff is an ordered list of deltas, sorted by path.
type Diff struct {
	Deltas []Delta
}

// Len returns the number of deltas.
func (d *Diff) Len() int { return len(d.Deltas) }

// IsEmpty reports whether there are no changes.
func (d *Diff) IsEmpty() bool { return len(d.Deltas) == 0 }

// Stats computes per-status counts.
func (d *Diff) Stats() Stats {
	var stats Stats
	for _, delta := range d.Deltas {
		switch delta.Status {
		case Added:
			stats.Added++
		case Deleted:
			stats.Deleted++
		case Modified:
			stats.Modified++
		case Renamed:
			stats.Renamed++
		case Copied:
			stats.Copied++
		}
	}
	return stats
}
