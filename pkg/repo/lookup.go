package repo

import (
	"grit/pkg/object"
)

// ResolveShortOid resolves a full or abbreviated (≥4 hex chars) object ID.
func (r *Repository) ResolveShortOid(oidStr string) (object.Oid, error) {
	return r.store.ResolvePrefix(oidStr)
}

// Object looks up any object by full or prefix OID and returns the tagged
// union value (*object.Blob, *object.Tree, *object.Commit, *object.TagObject).
func (r *Repository) Object(oidStr string) (object.Object, error) {
	oid, err := r.ResolveShortOid(oidStr)
	if err != nil {
		return nil, err
	}
	return r.store.Read(oid)
}

// Commit looks up a commit by full or prefix OID.
func (r *Repository) Commit(oidStr string) (*object.Commit, error) {
	oid, err := r.ResolveShortOid(oidStr)
	if err != nil {
		return nil, err
	}
	return r.store.ReadCommit(oid)
}

// Tree looks up a tree by full or prefix OID.
func (r *Repository) Tree(oidStr string) (*object.Tree, error) {
	oid, err := r.ResolveShortOid(oidStr)
	if err != nil {
		return nil, err
	}
	return r.store.ReadTree(oid)
}

// Blob looks up a blob by full or prefix OID.
func (r *Repository) Blob(oidStr string) (*object.Blob, error) {
	oid, err := r.ResolveShortOid(oidStr)
	if err != nil {
		return nil, err
	}
	return r.store.ReadBlob(oid)
}

// Tag looks up an annotated tag object by full or prefix OID.
func (r *Repository) Tag(oidStr string) (*object.TagObject, error) {
	oid, err := r.ResolveShortOid(oidStr)
	if err != nil {
		return nil, err
	}
	return r.store.ReadTag(oid)
}
