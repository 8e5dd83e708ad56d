package repo

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"grit/pkg/diff"
	"grit/pkg/giterr"
	"grit/pkg/index"
	"grit/pkg/object"
)

// flattenTree recursively walks a tree object and fills out with
// path -> (OID, mode) for every file entry. Paths use forward slashes.
func (r *Repository) flattenTree(treeOid object.Oid, prefix string, out map[string]diff.Entry) error {
	tree, err := r.store.ReadTree(treeOid)
	if err != nil {
		return err
	}

	for _, entry := range tree.Entries {
		full := entry.Name
		if prefix != "" {
			full = prefix + "/" + entry.Name
		}

		if entry.IsDir() {
			if err := r.flattenTree(entry.Oid, full, out); err != nil {
				return err
			}
			continue
		}
		out[full] = diff.Entry{Oid: entry.Oid, Mode: entry.Mode}
	}
	return nil
}

// FlattenTree returns the path -> (OID, mode) view of a tree.
func (r *Repository) FlattenTree(treeOid object.Oid) (map[string]diff.Entry, error) {
	out := make(map[string]diff.Entry)
	if err := r.flattenTree(treeOid, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// headFlatMap flattens the current HEAD commit's tree. An unborn HEAD
// yields an empty map.
func (r *Repository) headFlatMap() (map[string]diff.Entry, error) {
	head, err := r.Head()
	if err != nil {
		if giterr.HasKind(err, giterr.KindRefNotFound) {
			return map[string]diff.Entry{}, nil
		}
		return nil, err
	}
	commit, err := r.store.ReadCommit(head.Oid)
	if err != nil {
		return nil, err
	}
	return r.FlattenTree(commit.Tree)
}

// indexFlatMap converts the stage-0 index entries to a flat map.
func indexFlatMap(idx *index.Index) map[string]diff.Entry {
	out := make(map[string]diff.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		out[normalizeSlash(e.Path)] = diff.Entry{Oid: e.Oid, Mode: e.Mode}
	}
	return out
}

// workdirFlatMap scans the working tree, hashing each file to its blob OID.
// When a path is present in the index with matching size and mtime
// (seconds), the indexed OID is reused instead of re-hashing.
func (r *Repository) workdirFlatMap(idx *index.Index) (map[string]diff.Entry, error) {
	files, err := listWorkingTree(r.workDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]diff.Entry, len(files))
	for _, rel := range files {
		full, err := safeJoin(r.workDir, rel)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(full)
		if err != nil {
			return nil, giterr.Io(err)
		}
		mode := modeFromFileInfo(info)

		if entry, ok := idx.Get(rel); ok &&
			uint32(info.Size()) == entry.Size &&
			uint32(info.ModTime().Unix()) == entry.MtimeSec {
			out[rel] = diff.Entry{Oid: entry.Oid, Mode: entry.Mode}
			continue
		}

		content, err := os.ReadFile(full)
		if err != nil {
			return nil, giterr.Io(err)
		}
		out[rel] = diff.Entry{Oid: object.HashObject(object.TypeBlob, content), Mode: mode}
	}
	return out, nil
}

// buildTreeFromIndex writes tree objects for the index contents bottom-up
// and returns the root tree OID. Directories are composed leaf-first so a
// parent tree always references already-written children.
func (r *Repository) buildTreeFromIndex(idx *index.Index) (object.Oid, error) {
	if idx.IsEmpty() {
		return object.ZeroOid, giterr.EmptyCommit()
	}
	return r.buildTreeDir(idx, "")
}

// buildTreeDir writes the tree object for one directory prefix.
func (r *Repository) buildTreeDir(idx *index.Index, prefix string) (object.Oid, error) {
	files := make(map[string]*index.Entry)
	subdirs := make(map[string]bool)

	for i := range idx.Entries {
		entry := &idx.Entries[i]
		if entry.Stage != 0 {
			continue
		}
		p := normalizeSlash(entry.Path)

		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		if slash := strings.IndexByte(rel, '/'); slash < 0 {
			files[rel] = entry
		} else {
			subdirs[rel[:slash]] = true
		}
	}

	tree := &object.Tree{}
	for name, entry := range files {
		tree.Entries = append(tree.Entries, object.TreeEntry{
			Mode: entry.Mode,
			Name: name,
			Oid:  entry.Oid,
		})
	}
	for name := range subdirs {
		if _, isFile := files[name]; isFile {
			continue
		}
		child := name
		if prefix != "" {
			child = prefix + "/" + name
		}
		subOid, err := r.buildTreeDir(idx, child)
		if err != nil {
			return object.ZeroOid, fmt.Errorf("build tree %q: %w", child, err)
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{
			Mode: object.ModeDir,
			Name: name,
			Oid:  subOid,
		})
	}

	oid, err := r.store.Write(object.TypeTree, object.MarshalTree(tree))
	if err != nil {
		return object.ZeroOid, fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return oid, nil
}

// sortedPaths returns the keys of a flat map in ascending order.
func sortedPaths(m map[string]diff.Entry) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// normalizeSlash converts separators to forward slashes and cleans the
// path, the internal representation everywhere in the engine.
func normalizeSlash(p string) string {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if cleaned == "." {
		return ""
	}
	return cleaned
}
