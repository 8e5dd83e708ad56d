package repo

import (
	"fmt"
	"os"

	"grit/pkg/giterr"
	"grit/pkg/index"
	"grit/pkg/object"
)

// Add stages a single file: the blob is written to the object store
// (a no-op when the content already exists) and the index entry is
// inserted or replaced with fresh stat fields.
func (r *Repository) Add(relPath string) error {
	rel := normalizeSlash(relPath)
	full, err := safeJoin(r.workDir, rel)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return giterr.PathNotFound(rel)
		}
		return giterr.Io(err)
	}

	idx, err := r.readIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	entry, err := r.stageFile(rel, full, info)
	if err != nil {
		return fmt.Errorf("add %q: %w", rel, err)
	}
	idx.Add(entry)

	if err := r.writeIndex(idx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// AddAll stages every working-tree file (new or changed content is written
// as blobs, unchanged entries are left alone) and removes index entries
// whose files no longer exist on disk.
func (r *Repository) AddAll() error {
	idx, err := r.readIndex()
	if err != nil {
		return fmt.Errorf("add all: %w", err)
	}

	files, err := listWorkingTree(r.workDir)
	if err != nil {
		return fmt.Errorf("add all: %w", err)
	}

	onDisk := make(map[string]bool, len(files))
	for _, rel := range files {
		onDisk[rel] = true

		full, err := safeJoin(r.workDir, rel)
		if err != nil {
			return err
		}
		info, err := os.Stat(full)
		if err != nil {
			return giterr.Io(err)
		}

		// Stat fast path: identical size and mtime means the indexed
		// entry is still current.
		if entry, ok := idx.Get(rel); ok &&
			uint32(info.Size()) == entry.Size &&
			uint32(info.ModTime().Unix()) == entry.MtimeSec {
			continue
		}

		entry, err := r.stageFile(rel, full, info)
		if err != nil {
			return fmt.Errorf("add all %q: %w", rel, err)
		}
		idx.Add(entry)
	}

	var missing []string
	for _, entry := range idx.Entries {
		if !onDisk[normalizeSlash(entry.Path)] {
			missing = append(missing, entry.Path)
		}
	}
	for _, p := range missing {
		idx.Remove(p)
	}

	if err := r.writeIndex(idx); err != nil {
		return fmt.Errorf("add all: %w", err)
	}
	return nil
}

// stageFile writes the blob for one working-tree file and builds its index
// entry from filesystem metadata.
func (r *Repository) stageFile(rel, full string, info os.FileInfo) (index.Entry, error) {
	content, err := os.ReadFile(full)
	if err != nil {
		return index.Entry{}, giterr.Io(err)
	}

	oid, err := r.store.Write(object.TypeBlob, content)
	if err != nil {
		return index.Entry{}, err
	}

	mtime := info.ModTime()
	return index.Entry{
		CtimeSec:  uint32(mtime.Unix()),
		CtimeNsec: uint32(mtime.Nanosecond()),
		MtimeSec:  uint32(mtime.Unix()),
		MtimeNsec: uint32(mtime.Nanosecond()),
		Mode:      modeFromFileInfo(info),
		Size:      uint32(len(content)),
		Oid:       oid,
		Path:      rel,
	}, nil
}

// Reset restores the index entry for one path to the HEAD tree state,
// dropping it entirely when HEAD lacks the path.
func (r *Repository) Reset(relPath string) error {
	rel := normalizeSlash(relPath)

	headFiles, err := r.headFlatMap()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	idx, err := r.readIndex()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if entry, ok := headFiles[rel]; ok {
		restored, err := r.entryFromHead(rel, entry.Oid, entry.Mode)
		if err != nil {
			return fmt.Errorf("reset %q: %w", rel, err)
		}
		idx.Add(restored)
	} else {
		idx.Remove(rel)
	}

	if err := r.writeIndex(idx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// ResetAll rebuilds the whole index from the HEAD tree.
func (r *Repository) ResetAll() error {
	headFiles, err := r.headFlatMap()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	idx, err := r.readIndex()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	idx.Clear()
	for rel, entry := range headFiles {
		restored, err := r.entryFromHead(rel, entry.Oid, entry.Mode)
		if err != nil {
			return fmt.Errorf("reset %q: %w", rel, err)
		}
		idx.Add(restored)
	}

	if err := r.writeIndex(idx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// entryFromHead builds an index entry for a HEAD tree member. Size comes
// from the blob; the other stat fields are zeroed and repopulate on the
// next add.
func (r *Repository) entryFromHead(rel string, oid object.Oid, mode object.FileMode) (index.Entry, error) {
	blob, err := r.store.ReadBlob(oid)
	if err != nil {
		return index.Entry{}, err
	}
	return index.Entry{
		Mode: mode,
		Size: uint32(len(blob.Data)),
		Oid:  oid,
		Path: rel,
	}, nil
}
