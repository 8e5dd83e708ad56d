package repo

import (
	"fmt"

	"grit/pkg/diff"
	"grit/pkg/object"
)

// DiffTrees compares two trees. A nil oldTree stands for the empty tree,
// which is how root commits diff.
func (r *Repository) DiffTrees(oldTree, newTree *object.Tree) (*diff.Diff, error) {
	oldMap := map[string]diff.Entry{}
	if oldTree != nil {
		if err := r.flattenTreeObj(oldTree, "", oldMap); err != nil {
			return nil, fmt.Errorf("diff trees: %w", err)
		}
	}
	newMap := map[string]diff.Entry{}
	if err := r.flattenTreeObj(newTree, "", newMap); err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	return diff.FlatMaps(oldMap, newMap), nil
}

// flattenTreeObj flattens an already-parsed tree, reading subtrees from the
// store as it descends.
func (r *Repository) flattenTreeObj(tree *object.Tree, prefix string, out map[string]diff.Entry) error {
	for _, entry := range tree.Entries {
		full := entry.Name
		if prefix != "" {
			full = prefix + "/" + entry.Name
		}

		if entry.IsDir() {
			sub, err := r.store.ReadTree(entry.Oid)
			if err != nil {
				return err
			}
			if err := r.flattenTreeObj(sub, full, out); err != nil {
				return err
			}
			continue
		}
		out[full] = diff.Entry{Oid: entry.Oid, Mode: entry.Mode}
	}
	return nil
}

// CommitDiff diffs a commit against its first parent. Root commits report
// every file as Added; merge commits diff against the mainline parent only.
func (r *Repository) CommitDiff(commit *object.Commit) (*diff.Diff, error) {
	newTree, err := r.store.ReadTree(commit.Tree)
	if err != nil {
		return nil, fmt.Errorf("commit diff: %w", err)
	}

	var oldTree *object.Tree
	if parentOid, ok := commit.Parent(); ok {
		parent, err := r.store.ReadCommit(parentOid)
		if err != nil {
			return nil, fmt.Errorf("commit diff: %w", err)
		}
		oldTree, err = r.store.ReadTree(parent.Tree)
		if err != nil {
			return nil, fmt.Errorf("commit diff: %w", err)
		}
	}

	return r.DiffTrees(oldTree, newTree)
}

// DiffIndexToWorkdir shows unstaged changes: index on the old side,
// worktree scan on the new.
func (r *Repository) DiffIndexToWorkdir() (*diff.Diff, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, fmt.Errorf("diff index to workdir: %w", err)
	}
	workMap, err := r.workdirFlatMap(idx)
	if err != nil {
		return nil, fmt.Errorf("diff index to workdir: %w", err)
	}
	return diff.FlatMaps(indexFlatMap(idx), workMap), nil
}

// DiffHeadToIndex shows staged changes: HEAD tree against the index.
func (r *Repository) DiffHeadToIndex() (*diff.Diff, error) {
	headMap, err := r.headFlatMap()
	if err != nil {
		return nil, fmt.Errorf("diff head to index: %w", err)
	}
	idx, err := r.readIndex()
	if err != nil {
		return nil, fmt.Errorf("diff head to index: %w", err)
	}
	return diff.FlatMaps(headMap, indexFlatMap(idx)), nil
}

// DiffHeadToWorkdir shows all changes since the last commit: HEAD tree
// against the worktree scan.
func (r *Repository) DiffHeadToWorkdir() (*diff.Diff, error) {
	headMap, err := r.headFlatMap()
	if err != nil {
		return nil, fmt.Errorf("diff head to workdir: %w", err)
	}
	idx, err := r.readIndex()
	if err != nil {
		return nil, fmt.Errorf("diff head to workdir: %w", err)
	}
	workMap, err := r.workdirFlatMap(idx)
	if err != nil {
		return nil, fmt.Errorf("diff head to workdir: %w", err)
	}
	return diff.FlatMaps(headMap, workMap), nil
}
