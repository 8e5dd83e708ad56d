package repo

import (
	"os"
	"path/filepath"
	"testing"

	"grit/pkg/diff"
)

// Seed scenario: the root commit's diff reports every file as Added.
func TestCommitDiffRootCommit(t *testing.T) {
	r := initTestRepo(t)
	oid := commitFiles(t, r, "initial", 1000, map[string]string{
		"file1.txt":   "one",
		"file2.txt":   "two",
		"src/main.go": "package main",
	})

	commit, err := r.Commit(oid.Hex())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	d, err := r.CommitDiff(commit)
	if err != nil {
		t.Fatalf("CommitDiff: %v", err)
	}

	if d.Len() != 3 {
		t.Fatalf("deltas: got %d, want 3", d.Len())
	}
	want := map[string]bool{"file1.txt": true, "file2.txt": true, "src/main.go": true}
	for _, delta := range d.Deltas {
		if delta.Status != diff.Added {
			t.Errorf("%s: got %v, want Added", delta.Path, delta.Status)
		}
		if !want[delta.Path] {
			t.Errorf("unexpected path %s", delta.Path)
		}
	}
}

func TestCommitDiffAgainstParent(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{
		"keep.txt":   "same",
		"change.txt": "before",
		"gone.txt":   "bye",
	})

	// Second commit: modify one, delete one, add one.
	writeWorkFile(t, r, "change.txt", "after")
	if err := r.Add("change.txt"); err != nil {
		t.Fatal(err)
	}
	writeWorkFile(t, r, "added.txt", "hello")
	if err := r.Add("added.txt"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(r.Path(), "gone.txt")); err != nil {
		t.Fatal(err)
	}
	if err := r.AddAll(); err != nil {
		t.Fatal(err)
	}
	second, err := r.CreateCommit("second", testSig(2000), testSig(2000))
	if err != nil {
		t.Fatalf("CreateCommit: %v", err)
	}

	commit, err := r.Commit(second.Hex())
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.CommitDiff(commit)
	if err != nil {
		t.Fatalf("CommitDiff: %v", err)
	}

	got := map[string]diff.Status{}
	for _, delta := range d.Deltas {
		got[delta.Path] = delta.Status
	}
	if got["change.txt"] != diff.Modified {
		t.Errorf("change.txt: %v", got["change.txt"])
	}
	if got["added.txt"] != diff.Added {
		t.Errorf("added.txt: %v", got["added.txt"])
	}
	if got["gone.txt"] != diff.Deleted {
		t.Errorf("gone.txt: %v", got["gone.txt"])
	}
	if _, present := got["keep.txt"]; present {
		t.Error("unchanged keep.txt reported")
	}
}

// Seed scenario: a pure rename pairs the delete and add into one Renamed
// delta.
func TestCommitDiffRename(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"old_name.txt": "identical content"})

	// git-mv: delete old path, add new path with the same bytes.
	if err := os.Remove(filepath.Join(r.Path(), "old_name.txt")); err != nil {
		t.Fatal(err)
	}
	writeWorkFile(t, r, "new_name.txt", "identical content")
	if err := r.AddAll(); err != nil {
		t.Fatal(err)
	}
	second, err := r.CreateCommit("rename", testSig(2000), testSig(2000))
	if err != nil {
		t.Fatalf("CreateCommit: %v", err)
	}

	commit, err := r.Commit(second.Hex())
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.CommitDiff(commit)
	if err != nil {
		t.Fatalf("CommitDiff: %v", err)
	}

	if d.Len() != 1 {
		t.Fatalf("deltas: %+v", d.Deltas)
	}
	delta := d.Deltas[0]
	if delta.Status != diff.Renamed {
		t.Fatalf("status: got %v, want Renamed", delta.Status)
	}
	if delta.OldPath != "old_name.txt" || delta.Path != "new_name.txt" {
		t.Errorf("paths: %q -> %q", delta.OldPath, delta.Path)
	}
}

func TestDiffHeadToIndexStagedChange(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "committed"})

	writeWorkFile(t, r, "a.txt", "staged version")
	if err := r.Add("a.txt"); err != nil {
		t.Fatal(err)
	}

	d, err := r.DiffHeadToIndex()
	if err != nil {
		t.Fatalf("DiffHeadToIndex: %v", err)
	}
	if d.Len() != 1 || d.Deltas[0].Status != diff.Modified || d.Deltas[0].Path != "a.txt" {
		t.Errorf("deltas: %+v", d.Deltas)
	}
}

func TestDiffIndexToWorkdirUnstagedChange(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "committed"})

	// Unstaged edit with a different length defeats the stat fast path.
	writeWorkFile(t, r, "a.txt", "dirty edit, unstaged")

	d, err := r.DiffIndexToWorkdir()
	if err != nil {
		t.Fatalf("DiffIndexToWorkdir: %v", err)
	}
	if d.Len() != 1 || d.Deltas[0].Status != diff.Modified {
		t.Errorf("deltas: %+v", d.Deltas)
	}

	// Staging the edit clears the index-to-workdir diff.
	if err := r.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	d, err = r.DiffIndexToWorkdir()
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsEmpty() {
		t.Errorf("after staging: %+v", d.Deltas)
	}
}

func TestDiffHeadToWorkdirSeesBothKinds(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"staged.txt": "s0", "dirty.txt": "d0"})

	writeWorkFile(t, r, "staged.txt", "staged change")
	if err := r.Add("staged.txt"); err != nil {
		t.Fatal(err)
	}
	writeWorkFile(t, r, "dirty.txt", "unstaged change")

	d, err := r.DiffHeadToWorkdir()
	if err != nil {
		t.Fatalf("DiffHeadToWorkdir: %v", err)
	}

	got := map[string]diff.Status{}
	for _, delta := range d.Deltas {
		got[delta.Path] = delta.Status
	}
	if got["staged.txt"] != diff.Modified || got["dirty.txt"] != diff.Modified {
		t.Errorf("deltas: %+v", d.Deltas)
	}
}

// Applying the deltas from diff(T1, T2) to T1's flat map must reproduce
// T2's flat map.
func TestDiffDeltasApplyCleanly(t *testing.T) {
	r := initTestRepo(t)
	first := commitFiles(t, r, "first", 1000, map[string]string{
		"a.txt":     "a0",
		"b/c.txt":   "c0",
		"drop.txt":  "d0",
		"stay.txt":  "s0",
		"other.txt": "o0",
	})

	writeWorkFile(t, r, "a.txt", "a1 changed")
	if err := os.Remove(filepath.Join(r.Path(), "drop.txt")); err != nil {
		t.Fatal(err)
	}
	writeWorkFile(t, r, "b/new.txt", "fresh")
	if err := r.AddAll(); err != nil {
		t.Fatal(err)
	}
	second, err := r.CreateCommit("second", testSig(2000), testSig(2000))
	if err != nil {
		t.Fatal(err)
	}

	firstCommit, _ := r.Commit(first.Hex())
	secondCommit, _ := r.Commit(second.Hex())
	oldMap, err := r.FlattenTree(firstCommit.Tree)
	if err != nil {
		t.Fatal(err)
	}
	newMap, err := r.FlattenTree(secondCommit.Tree)
	if err != nil {
		t.Fatal(err)
	}

	d, err := r.CommitDiff(secondCommit)
	if err != nil {
		t.Fatal(err)
	}

	applied := map[string]diff.Entry{}
	for p, e := range oldMap {
		applied[p] = e
	}
	for _, delta := range d.Deltas {
		switch delta.Status {
		case diff.Added:
			applied[delta.Path] = diff.Entry{Oid: delta.NewOid, Mode: delta.NewMode}
		case diff.Deleted:
			delete(applied, delta.Path)
		case diff.Modified:
			applied[delta.Path] = diff.Entry{Oid: delta.NewOid, Mode: delta.NewMode}
		case diff.Renamed:
			delete(applied, delta.OldPath)
			applied[delta.Path] = diff.Entry{Oid: delta.NewOid, Mode: delta.NewMode}
		}
	}

	if len(applied) != len(newMap) {
		t.Fatalf("applied size %d, want %d", len(applied), len(newMap))
	}
	for p, e := range newMap {
		if applied[p] != e {
			t.Errorf("path %s: applied %+v, want %+v", p, applied[p], e)
		}
	}
}
