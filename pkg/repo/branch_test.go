package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grit/pkg/giterr"
)

func TestCreateBranchAtHead(t *testing.T) {
	r := initTestRepo(t)
	oid := commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	branch, err := r.CreateBranch("feature", nil)
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if branch.Name != "feature" || branch.Oid != oid {
		t.Errorf("branch: %+v", branch)
	}

	data, err := os.ReadFile(filepath.Join(r.GitDir(), "refs", "heads", "feature"))
	if err != nil {
		t.Fatalf("read ref: %v", err)
	}
	if strings.TrimSpace(string(data)) != oid.Hex() {
		t.Errorf("ref content: %q", data)
	}
}

func TestCreateBranchAtTarget(t *testing.T) {
	r := initTestRepo(t)
	first := commitFiles(t, r, "first", 1000, map[string]string{"a.txt": "1"})
	commitFiles(t, r, "second", 2000, map[string]string{"a.txt": "2"})

	branch, err := r.CreateBranch("from-first", &first)
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if branch.Oid != first {
		t.Errorf("branch oid: got %s, want %s", branch.Oid, first)
	}
}

func TestCreateBranchNested(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if _, err := r.CreateBranch("feature/login/oauth", nil); err != nil {
		t.Fatalf("nested branch: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.GitDir(), "refs", "heads", "feature", "login", "oauth")); err != nil {
		t.Errorf("nested ref file missing: %v", err)
	}
}

func TestCreateBranchAlreadyExists(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if _, err := r.CreateBranch("dup", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateBranch("dup", nil); !giterr.HasKind(err, giterr.KindRefAlreadyExists) {
		t.Errorf("expected RefAlreadyExists, got %v", err)
	}
}

func TestCreateBranchInvalidNames(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	bad := []string{
		"",
		"-leading-dash",
		"double..dot",
		"colon:name",
		"question?",
		"star*",
		"bracket[",
		"back\\slash",
		"slash//slash",
		"trailing.lock",
		"at@{brace",
		"/leading-slash",
		"trailing-slash/",
		"control\x01char",
		"tilde~name",
		"caret^name",
	}
	for _, name := range bad {
		if _, err := r.CreateBranch(name, nil); !giterr.HasKind(err, giterr.KindInvalidRefName) {
			t.Errorf("name %q: expected InvalidRefName, got %v", name, err)
		}
	}
}

func TestDeleteBranch(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if _, err := r.CreateBranch("doomed", nil); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteBranch("doomed"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if err := r.DeleteBranch("doomed"); !giterr.HasKind(err, giterr.KindRefNotFound) {
		t.Errorf("second delete: expected RefNotFound, got %v", err)
	}
}

func TestDeleteCurrentBranchRefused(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if err := r.DeleteBranch("main"); !giterr.HasKind(err, giterr.KindCannotDeleteCurrentBranch) {
		t.Errorf("expected CannotDeleteCurrentBranch, got %v", err)
	}
}

func TestDeleteBranchPrunesEmptyDirs(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if _, err := r.CreateBranch("group/sub/leaf", nil); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteBranch("group/sub/leaf"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(r.GitDir(), "refs", "heads", "group")); !os.IsNotExist(err) {
		t.Error("empty branch directories not pruned")
	}
}

func TestBranchesListing(t *testing.T) {
	r := initTestRepo(t)
	commitFiles(t, r, "base", 1000, map[string]string{"a.txt": "a"})

	if _, err := r.CreateBranch("beta", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateBranch("alpha", nil); err != nil {
		t.Fatal(err)
	}

	branches, err := r.Branches()
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	var names []string
	for _, b := range branches {
		names = append(names, b.Name)
	}
	want := []string{"alpha", "beta", "main"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("branches: got %v, want %v", names, want)
	}
}
