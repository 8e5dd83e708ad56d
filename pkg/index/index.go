// Package index implements the Git staging-area file (.git/index),
// versions 2 and 3, plus the in-memory mutations the write paths need.
//
// The index is treated as a value: callers parse it, mutate the entry list,
// and serialize the whole document back. Ordering by (path, stage) is
// re-established on serialize, so mutation order never matters.
package index

import (
	"sort"

	"grit/pkg/object"
)

// Entry is a single staged file. Stat fields cache the filesystem state at
// staging time so status checks can skip re-hashing unchanged files.
type Entry struct {
	CtimeSec  uint32
	CtimeNsec uint32
	MtimeSec  uint32
	MtimeNsec uint32
	Dev       uint32
	Ino       uint32
	Mode      object.FileMode
	Uid       uint32
	Gid       uint32
	Size      uint32
	Oid       object.Oid
	// Stage is 0 for normal entries, 1-3 for merge conflict stages.
	Stage uint8
	// Path is repo-relative with forward slashes on every platform.
	Path string
}

// IsConflicted reports whether the entry belongs to an unresolved merge.
func (e *Entry) IsConflicted() bool {
	return e.Stage != 0
}

// Index is the staging area document.
type Index struct {
	// Version is the DIRC format version (2, 3, or 4).
	Version uint32
	Entries []Entry
}

// New returns an empty index with the given format version.
func New(version uint32) *Index {
	return &Index{Version: version}
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.Entries)
}

// IsEmpty reports whether the index has no entries.
func (idx *Index) IsEmpty() bool {
	return len(idx.Entries) == 0
}

// Get finds the stage-0 entry for path.
func (idx *Index) Get(path string) (*Entry, bool) {
	for i := range idx.Entries {
		if idx.Entries[i].Path == path && idx.Entries[i].Stage == 0 {
			return &idx.Entries[i], true
		}
	}
	return nil, false
}

// Add inserts or replaces the entry keyed by (path, stage).
func (idx *Index) Add(entry Entry) {
	for i := range idx.Entries {
		if idx.Entries[i].Path == entry.Path && idx.Entries[i].Stage == entry.Stage {
			idx.Entries[i] = entry
			return
		}
	}
	idx.Entries = append(idx.Entries, entry)
}

// Remove drops all stages of path. It reports whether anything was removed.
func (idx *Index) Remove(path string) bool {
	kept := idx.Entries[:0]
	removed := false
	for _, e := range idx.Entries {
		if e.Path == path {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept
	return removed
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.Entries = nil
}

// sortEntries orders entries ascending by (path bytes, stage), the order
// the wire format requires.
func (idx *Index) sortEntries() {
	sort.Slice(idx.Entries, func(i, j int) bool {
		a, b := &idx.Entries[i], &idx.Entries[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Stage < b.Stage
	})
}
