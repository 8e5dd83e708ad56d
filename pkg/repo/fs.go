package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"grit/pkg/giterr"
)

// writeFileAtomic writes data to a sibling temp file and renames it into
// place, so concurrent readers never observe a torn file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomic write %q: mkdir: %w", path, giterr.Io(err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("atomic write %q: tmpfile: %w", path, giterr.Io(err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("atomic write %q: write: %w", path, giterr.Io(err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("atomic write %q: close: %w", path, giterr.Io(err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("atomic write %q: rename: %w", path, giterr.Io(err))
	}
	return nil
}

// listWorkingTree walks the working tree and returns repo-relative paths
// (forward slashes) of regular files, sorted. The .git directory is always
// skipped, as are hidden entries other than .gitignore and .gitattributes.
func listWorkingTree(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		name := d.Name()
		if name == ".git" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") && name != ".gitignore" && name != ".gitattributes" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, giterr.PathNotFound(root)
		}
		return nil, giterr.Io(err)
	}

	sort.Strings(files)
	return files, nil
}

// safeJoin resolves a repo-relative path against root, rejecting results
// that would escape it. Tree and index entry names are untrusted input.
func safeJoin(root, rel string) (string, error) {
	joined := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", giterr.PathNotFound(rel)
	}
	return joined, nil
}

