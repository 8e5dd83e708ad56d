package repo

import (
	"fmt"
	"os"
	"sort"

	"grit/pkg/diff"
	"grit/pkg/giterr"
	"grit/pkg/index"
	"grit/pkg/object"
)

// FileStatus is the state of one path in the HEAD/index/worktree
// comparison.
type FileStatus int

const (
	// StatusUntracked marks a file on disk that the index does not track,
	// whether or not HEAD has it.
	StatusUntracked FileStatus = iota
	// StatusAdded marks a file staged for its first commit.
	StatusAdded
	// StatusModified marks unstaged content changes against the index.
	StatusModified
	// StatusDeleted marks a tracked file missing from the working tree.
	StatusDeleted
	// StatusStagedModified marks staged content changes against HEAD.
	StatusStagedModified
	// StatusStagedDeleted marks a removal recorded in the index.
	StatusStagedDeleted
)

// IsStaged reports whether the state describes an index change against
// HEAD.
func (s FileStatus) IsStaged() bool {
	return s == StatusAdded || s == StatusStagedModified || s == StatusStagedDeleted
}

// IsUnstaged reports whether the state describes a working-tree change
// against the index.
func (s FileStatus) IsUnstaged() bool {
	return s == StatusModified || s == StatusDeleted || s == StatusUntracked
}

func (s FileStatus) String() string {
	switch s {
	case StatusUntracked:
		return "untracked"
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusStagedModified:
		return "staged modified"
	case StatusStagedDeleted:
		return "staged deleted"
	}
	return "unknown"
}

// StatusEntry is one changed path.
type StatusEntry struct {
	// Path is repo-relative with forward slashes.
	Path   string
	Status FileStatus
}

// Status computes the three-way HEAD/index/worktree comparison and returns
// the changed paths, sorted. Clean paths are omitted.
func (r *Repository) Status() ([]StatusEntry, error) {
	headFiles, err := r.headFlatMap()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	idx, err := r.readIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	indexFiles := indexFlatMap(idx)

	workFiles, err := listWorkingTree(r.workDir)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	onDisk := make(map[string]bool, len(workFiles))
	for _, p := range workFiles {
		onDisk[p] = true
	}

	paths := make(map[string]bool, len(headFiles)+len(indexFiles)+len(onDisk))
	for p := range headFiles {
		paths[p] = true
	}
	for p := range indexFiles {
		paths[p] = true
	}
	for p := range onDisk {
		paths[p] = true
	}

	var entries []StatusEntry
	for p := range paths {
		headEntry, inHead := headFiles[p]
		indexEntry, inIndex := indexFiles[p]
		inWork := onDisk[p]

		var status FileStatus
		var report bool

		switch {
		case !inHead && !inIndex && inWork:
			status, report = StatusUntracked, true
		case !inHead && inIndex && inWork:
			status, report = StatusAdded, true
		case !inHead && inIndex && !inWork:
			// Added to the index, then removed from disk; the staged
			// addition is what remains visible.
			status, report = StatusAdded, true
		case inHead && !inIndex && !inWork:
			status, report = StatusStagedDeleted, true
		case inHead && !inIndex && inWork:
			// Removed from the index but present on disk again: the disk
			// copy is no longer tracked.
			status, report = StatusUntracked, true
		case inHead && inIndex && !inWork:
			status, report = StatusDeleted, true
		case inHead && inIndex && inWork:
			if indexEntry.Oid != headEntry.Oid {
				status, report = StatusStagedModified, true
				break
			}
			modified, err := r.worktreeDiffers(p, idx, indexEntry)
			if err != nil {
				return nil, fmt.Errorf("status %q: %w", p, err)
			}
			if modified {
				status, report = StatusModified, true
			}
		}

		if report {
			entries = append(entries, StatusEntry{Path: p, Status: status})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// worktreeDiffers reports whether the on-disk content differs from the
// indexed blob. Cheap stat comparisons run first: a size mismatch is a
// difference, and an equal size with an equal mtime (seconds) is treated
// as unchanged. Only the remaining case hashes the file.
func (r *Repository) worktreeDiffers(rel string, idx *index.Index, indexEntry diff.Entry) (bool, error) {
	full, err := safeJoin(r.workDir, rel)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, giterr.Io(err)
	}

	if stat, ok := idx.Get(rel); ok {
		if uint32(info.Size()) != stat.Size {
			return true, nil
		}
		if uint32(info.ModTime().Unix()) == stat.MtimeSec {
			return false, nil
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return false, giterr.Io(err)
	}
	return object.HashObject(object.TypeBlob, content) != indexEntry.Oid, nil
}
