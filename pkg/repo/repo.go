// Package repo is the repository facade: opening and initializing a
// working copy, plus the derived operations: history, status, diffs, and
// the write paths (add, reset, commit, branch, checkout).
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"grit/pkg/giterr"
	"grit/pkg/index"
	"grit/pkg/object"
	"grit/pkg/refs"
)

// Repository is an opened Git working copy. A handle holds no long-lived
// file descriptors; it is cheap and safe to keep around, but is designed
// for use from one caller at a time.
type Repository struct {
	workDir string
	gitDir  string
	store   *object.Store
}

// Path returns the working-tree root.
func (r *Repository) Path() string {
	return r.workDir
}

// GitDir returns the .git directory path.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// Store returns the loose object store.
func (r *Repository) Store() *object.Store {
	return r.store
}

func (r *Repository) refStore() *refs.Store {
	return refs.NewStore(r.gitDir)
}

// validateGitDir checks the minimal shape of a .git directory: a HEAD
// file plus objects/ and refs/ directories.
func validateGitDir(gitDir string) error {
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return giterr.NotARepository(gitDir)
	}

	head, err := os.Stat(filepath.Join(gitDir, "HEAD"))
	if err != nil || head.IsDir() {
		return giterr.NotARepository(gitDir)
	}
	for _, sub := range []string{"objects", "refs"} {
		info, err := os.Stat(filepath.Join(gitDir, sub))
		if err != nil || !info.IsDir() {
			return giterr.NotARepository(gitDir)
		}
	}
	return nil
}

func newRepository(workDir, gitDir string) *Repository {
	return &Repository{
		workDir: workDir,
		gitDir:  gitDir,
		store:   object.NewStore(filepath.Join(gitDir, "objects")),
	}
}

// Open opens a repository. The path may be either the working-tree root
// (containing .git/) or the .git directory itself.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, giterr.NotARepository(path)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, giterr.NotARepository(path)
	}

	var workDir, gitDir string
	if filepath.Base(abs) == ".git" {
		gitDir = abs
		workDir = filepath.Dir(abs)
	} else {
		workDir = abs
		gitDir = filepath.Join(abs, ".git")
	}

	if err := validateGitDir(gitDir); err != nil {
		return nil, err
	}
	return newRepository(workDir, gitDir), nil
}

// Discover ascends from path until a directory containing a valid .git
// directory is found.
func Discover(path string) (*Repository, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return nil, giterr.NotARepository(path)
	}

	for {
		gitDir := filepath.Join(current, ".git")
		if validateGitDir(gitDir) == nil {
			return newRepository(current, gitDir), nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, giterr.NotARepository(path)
		}
		current = parent
	}
}

// defaultConfig is the minimal config an initialized repository carries.
const defaultConfig = "[core]\n\trepositoryformatversion = 0\n"

// Init creates a fresh repository at path: .git/ with objects/, refs/heads,
// refs/tags, a HEAD pointing at the unborn main branch, and a minimal
// config. It fails when a repository already exists there.
func Init(path string) (*Repository, error) {
	gitDir := filepath.Join(path, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		return nil, giterr.AlreadyARepository(path)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, giterr.Io(err))
		}
	}

	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", giterr.Io(err))
	}
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(defaultConfig), 0o644); err != nil {
		return nil, fmt.Errorf("init: write config: %w", giterr.Io(err))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return newRepository(abs, filepath.Join(abs, ".git")), nil
}

// Head returns the current HEAD state. An empty repository (unborn branch)
// yields RefNotFound.
func (r *Repository) Head() (refs.Head, error) {
	return r.refStore().Head()
}

// readIndex loads .git/index, or an empty version-2 index if the file does
// not exist yet.
func (r *Repository) readIndex() (*index.Index, error) {
	data, err := os.ReadFile(filepath.Join(r.gitDir, "index"))
	if err != nil {
		if os.IsNotExist(err) {
			return index.New(2), nil
		}
		return nil, giterr.Io(err)
	}
	return index.Parse(data)
}

// writeIndex serializes the index and replaces .git/index atomically.
func (r *Repository) writeIndex(idx *index.Index) error {
	return writeFileAtomic(filepath.Join(r.gitDir, "index"), index.Marshal(idx))
}

// Index returns a copy of the current staging index.
func (r *Repository) Index() (*index.Index, error) {
	return r.readIndex()
}
