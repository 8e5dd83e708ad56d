package repo

import (
	"fmt"
	"strings"

	"grit/pkg/giterr"
	"grit/pkg/object"
	"grit/pkg/refs"
)

// validateBranchName enforces Git's ref-name rules: non-empty, no "..",
// no leading '-' or '/', no trailing '/' or ".lock", none of ~^:?*[\,
// no control characters, no "//", and no "@{".
func validateBranchName(name string) error {
	switch {
	case name == "":
		return giterr.InvalidRefName("branch name cannot be empty")
	case strings.HasPrefix(name, "-"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot start with '-': %s", name))
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot start or end with '/': %s", name))
	case strings.HasSuffix(name, ".lock"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot end with '.lock': %s", name))
	case strings.Contains(name, ".."):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot contain '..': %s", name))
	case strings.Contains(name, "//"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot contain '//': %s", name))
	case strings.Contains(name, "@{"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name cannot contain '@{': %s", name))
	case strings.ContainsAny(name, "~^:?*[\\"):
		return giterr.InvalidRefName(fmt.Sprintf("branch name contains an invalid character: %s", name))
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7F {
			return giterr.InvalidRefName(fmt.Sprintf("branch name cannot contain control characters: %s", name))
		}
	}
	return nil
}

// CreateBranch writes refs/heads/<name> pointing at target, or at HEAD
// when target is nil. Nested names (feature/x) create intermediate
// directories. Fails with RefAlreadyExists when the ref file is present.
func (r *Repository) CreateBranch(name string, target *object.Oid) (refs.Branch, error) {
	if err := validateBranchName(name); err != nil {
		return refs.Branch{}, err
	}

	rs := r.refStore()
	refName := "refs/heads/" + name
	if rs.Exists(refName) {
		return refs.Branch{}, giterr.RefAlreadyExists(name)
	}

	var oid object.Oid
	if target != nil {
		oid = *target
	} else {
		head, err := r.Head()
		if err != nil {
			return refs.Branch{}, err
		}
		oid = head.Oid
	}

	if err := rs.UpdateRef(refName, oid); err != nil {
		return refs.Branch{}, fmt.Errorf("create branch %q: %w", name, err)
	}
	return refs.Branch{Name: name, Oid: oid}, nil
}

// DeleteBranch removes refs/heads/<name> and prunes emptied parent
// directories. The currently checked-out branch cannot be deleted.
func (r *Repository) DeleteBranch(name string) error {
	rs := r.refStore()

	current, attached, err := rs.CurrentBranch()
	if err == nil && attached && current == name {
		return giterr.CannotDeleteCurrentBranch()
	}

	refName := "refs/heads/" + name
	if !rs.Exists(refName) {
		return giterr.RefNotFound(refName)
	}
	return rs.DeleteRef(refName)
}

// Branches lists local branches, sorted by name.
func (r *Repository) Branches() ([]refs.Branch, error) {
	return r.refStore().Branches()
}

// RemoteBranches lists remote-tracking branches, sorted.
func (r *Repository) RemoteBranches() ([]refs.RemoteBranch, error) {
	return r.refStore().RemoteBranches()
}

// Tags lists tags, sorted; annotated tags carry their message and tagger.
func (r *Repository) Tags() ([]refs.Tag, error) {
	return r.refStore().Tags(r.store)
}

// CurrentBranch returns the branch HEAD is attached to, or false when
// detached.
func (r *Repository) CurrentBranch() (string, bool, error) {
	return r.refStore().CurrentBranch()
}
