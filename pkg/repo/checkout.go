package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grit/pkg/diff"
	"grit/pkg/giterr"
	"grit/pkg/index"
	"grit/pkg/object"
)

// Checkout switches the working tree to the target, a branch name or a
// (possibly abbreviated) commit OID.
//
//  1. Refuse when the working tree has uncommitted changes (untracked
//     files do not count).
//  2. Resolve the target: branch first, then refspec, then OID prefix.
//  3. Materialize the target tree: remove tracked files absent from it,
//     write its files with mode preserved.
//  4. Rebuild the index from the target tree.
//  5. Write HEAD: symbolic for a branch, direct OID otherwise.
func (r *Repository) Checkout(target string) error {
	dirty, err := r.hasUncommittedChanges()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if dirty {
		return giterr.DirtyWorkingTree()
	}

	rs := r.refStore()

	var targetOid object.Oid
	isBranch := false
	if resolved, err := rs.Resolve("refs/heads/" + target); err == nil {
		targetOid = resolved.Oid
		isBranch = true
	} else if oid, err := rs.ResolveSpec(target); err == nil {
		targetOid = oid
	} else if oid, err := r.ResolveShortOid(target); err == nil {
		targetOid = oid
	} else {
		return giterr.RefNotFound(target)
	}

	commit, err := r.store.ReadCommit(targetOid)
	if err != nil {
		return fmt.Errorf("checkout %q: %w", target, err)
	}
	targetFiles, err := r.FlattenTree(commit.Tree)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := r.materializeTree(targetFiles); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.rebuildIndex(targetFiles); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if isBranch {
		if err := rs.WriteSymbolic("HEAD", "refs/heads/"+target); err != nil {
			return fmt.Errorf("checkout: update HEAD: %w", err)
		}
	} else {
		if err := rs.UpdateRef("HEAD", targetOid); err != nil {
			return fmt.Errorf("checkout: update HEAD: %w", err)
		}
	}
	return nil
}

// hasUncommittedChanges reports whether status shows anything beyond
// untracked files.
func (r *Repository) hasUncommittedChanges() (bool, error) {
	entries, err := r.Status()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Status != StatusUntracked {
			return true, nil
		}
	}
	return false, nil
}

// materializeTree makes the working tree match the target flat map:
// tracked files not in the target are removed (with emptied directories
// pruned), target files are written with their recorded mode.
func (r *Repository) materializeTree(target map[string]diff.Entry) error {
	current, err := r.headFlatMap()
	if err != nil {
		return err
	}

	for rel := range current {
		if _, keep := target[rel]; keep {
			continue
		}
		full, err := safeJoin(r.workDir, rel)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return giterr.Io(err)
		}
		r.removeEmptyParents(filepath.Dir(full))
	}

	for _, rel := range sortedPaths(target) {
		entry := target[rel]
		full, err := safeJoin(r.workDir, rel)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return giterr.Io(err)
		}

		blob, err := r.store.ReadBlob(entry.Oid)
		if err != nil {
			return fmt.Errorf("read blob for %q: %w", rel, err)
		}
		if err := os.WriteFile(full, blob.Data, filePermFromMode(entry.Mode)); err != nil {
			return giterr.Io(err)
		}
		// An existing file keeps its old permission bits; enforce the
		// executable bit where the platform honors it.
		if entry.Mode.IsExecutable() {
			os.Chmod(full, 0o755)
		}
	}
	return nil
}

// rebuildIndex replaces the index with entries for the target tree,
// stat fields freshly read from the files just written.
func (r *Repository) rebuildIndex(target map[string]diff.Entry) error {
	idx := index.New(2)
	for rel, entry := range target {
		ie := index.Entry{
			Mode: entry.Mode,
			Oid:  entry.Oid,
			Path: rel,
		}
		if full, err := safeJoin(r.workDir, rel); err == nil {
			if info, err := os.Stat(full); err == nil {
				ie.MtimeSec = uint32(info.ModTime().Unix())
				ie.MtimeNsec = uint32(info.ModTime().Nanosecond())
				ie.CtimeSec = ie.MtimeSec
				ie.CtimeNsec = ie.MtimeNsec
				ie.Size = uint32(info.Size())
			}
		}
		idx.Add(ie)
	}
	return r.writeIndex(idx)
}

// removeEmptyParents prunes empty directories from dir up to (not
// including) the working-tree root.
func (r *Repository) removeEmptyParents(dir string) {
	root := filepath.Clean(r.workDir)
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
