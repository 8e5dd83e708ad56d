package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func statusOf(t *testing.T, r *Repository, path string) (FileStatus, bool) {
	t.Helper()
	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, e := range entries {
		if e.Path == path {
			return e.Status, true
		}
	}
	return 0, false
}

func TestStatusCleanRepositoryIsEmpty(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a", "dir/b.txt": "b"})

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("clean repo status: %v", entries)
	}
}

// Seed scenario: a single untracked file on a clean fixture.
func TestStatusUntracked(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"tracked.txt": "t"})

	writeWorkFile(t, r, "test_untracked.txt", "test")

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: %v", entries)
	}
	if entries[0].Path != "test_untracked.txt" || entries[0].Status != StatusUntracked {
		t.Errorf("got %+v", entries[0])
	}
}

func TestStatusAdded(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	writeWorkFile(t, r, "new.txt", "new")
	if err := r.Add("new.txt"); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "new.txt"); !ok || status != StatusAdded {
		t.Errorf("got %v, %v", status, ok)
	}
}

// Staged addition whose file was then removed from disk still reports as
// Added.
func TestStatusAddedThenRemovedFromDisk(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	writeWorkFile(t, r, "ghost.txt", "ghost")
	if err := r.Add("ghost.txt"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(r.Path(), "ghost.txt")); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "ghost.txt"); !ok || status != StatusAdded {
		t.Errorf("got %v, %v", status, ok)
	}
}

func TestStatusModifiedUnstaged(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "original"})

	writeWorkFile(t, r, "a.txt", "changed content")

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusModified {
		t.Errorf("got %v, %v", status, ok)
	}
}

func TestStatusStagedModified(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "original"})

	writeWorkFile(t, r, "a.txt", "staged change")
	if err := r.Add("a.txt"); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusStagedModified {
		t.Errorf("got %v, %v", status, ok)
	}
}

func TestStatusDeletedFromWorktree(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if err := os.Remove(filepath.Join(r.Path(), "a.txt")); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusDeleted {
		t.Errorf("got %v, %v", status, ok)
	}
}

func TestStatusStagedDeleted(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	// Remove from both index and disk.
	if err := os.Remove(filepath.Join(r.Path(), "a.txt")); err != nil {
		t.Fatal(err)
	}
	if err := r.AddAll(); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusStagedDeleted {
		t.Errorf("got %v, %v", status, ok)
	}
}

// In HEAD, dropped from the index, but present on disk again: the disk
// copy is untracked.
func TestStatusRemovedFromIndexButOnDisk(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	idx, err := r.Index()
	if err != nil {
		t.Fatal(err)
	}
	idx.Remove("a.txt")
	if err := r.writeIndex(idx); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusUntracked {
		t.Errorf("got %v, %v", status, ok)
	}
}

func TestStatusSortedByPath(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"m.txt": "m"})

	writeWorkFile(t, r, "z.txt", "z")
	writeWorkFile(t, r, "a.txt", "a")
	writeWorkFile(t, r, "m.txt", "changed")

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Path > entries[i].Path {
			t.Fatalf("entries not sorted: %v", entries)
		}
	}
}

// Same size with an equal mtime is treated as unchanged without hashing;
// same size with a different mtime falls through to the hash comparison.
func TestStatusStatFastPathSameSize(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "aaaa"})

	// Rewrite with same length but different content, and push the mtime
	// away from the indexed value so the hash path runs.
	writeWorkFile(t, r, "a.txt", "bbbb")
	past := time.Now().Add(-time.Hour)
	full := filepath.Join(r.Path(), "a.txt")
	if err := os.Chtimes(full, past, past); err != nil {
		t.Fatal(err)
	}

	if status, ok := statusOf(t, r, "a.txt"); !ok || status != StatusModified {
		t.Errorf("same-size edit with changed mtime: got %v, %v", status, ok)
	}
}

func TestFileStatusHelpers(t *testing.T) {
	for _, s := range []FileStatus{StatusAdded, StatusStagedModified, StatusStagedDeleted} {
		if !s.IsStaged() || s.IsUnstaged() {
			t.Errorf("%v: staged-ness wrong", s)
		}
	}
	for _, s := range []FileStatus{StatusModified, StatusDeleted, StatusUntracked} {
		if s.IsStaged() || !s.IsUnstaged() {
			t.Errorf("%v: unstaged-ness wrong", s)
		}
	}
}
