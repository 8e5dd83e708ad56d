package repo

import (
	"fmt"

	"grit/pkg/giterr"
	"grit/pkg/object"
)

// CreateCommit builds a tree from the current index, writes a commit
// object pointing at it, and advances HEAD.
//
//  1. Build tree objects from the index, bottom-up.
//  2. Resolve the parent from HEAD; an unborn HEAD means a root commit.
//  3. Format and write the commit payload.
//  4. Update the checked-out branch ref, or HEAD itself when detached.
//
// Fails with EmptyCommit when nothing is staged.
func (r *Repository) CreateCommit(message string, author, committer object.Signature) (object.Oid, error) {
	idx, err := r.readIndex()
	if err != nil {
		return object.ZeroOid, fmt.Errorf("commit: %w", err)
	}
	if idx.IsEmpty() {
		return object.ZeroOid, giterr.EmptyCommit()
	}

	treeOid, err := r.buildTreeFromIndex(idx)
	if err != nil {
		return object.ZeroOid, fmt.Errorf("commit: %w", err)
	}

	// An unresolvable HEAD (fresh repository, unborn branch) is not an
	// error here: it simply means the new commit is a root.
	var parents []object.Oid
	if head, err := r.Head(); err == nil {
		parents = append(parents, head.Oid)
	}

	commit := &object.Commit{
		Tree:      treeOid,
		Parents:   parents,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	commitOid, err := r.store.Write(object.TypeCommit, object.MarshalCommit(commit))
	if err != nil {
		return object.ZeroOid, fmt.Errorf("commit: write: %w", err)
	}

	if err := r.updateHead(commitOid); err != nil {
		return object.ZeroOid, fmt.Errorf("commit: %w", err)
	}
	return commitOid, nil
}

// updateHead advances the branch HEAD is attached to, or HEAD itself when
// detached. Both go through atomic ref replacement.
func (r *Repository) updateHead(newOid object.Oid) error {
	rs := r.refStore()

	val, err := rs.ReadRef("HEAD")
	if err != nil {
		return err
	}
	if val.Symbolic {
		return rs.UpdateRef(val.Target, newOid)
	}
	return rs.UpdateRef("HEAD", newOid)
}
