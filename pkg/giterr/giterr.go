// Package giterr defines the error type shared by every layer of grit.
//
// All fallible operations return a *Error tagged with a Kind. Callers match
// on kinds with HasKind rather than string comparison; the underlying cause
// of I/O failures is preserved and reachable through errors.Unwrap.
package giterr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a repository error.
type Kind string

const (
	KindIo                        Kind = "io"
	KindNotARepository            Kind = "not_a_repository"
	KindAlreadyARepository        Kind = "already_a_repository"
	KindObjectNotFound            Kind = "object_not_found"
	KindRefNotFound               Kind = "ref_not_found"
	KindPathNotFound              Kind = "path_not_found"
	KindInvalidOid                Kind = "invalid_oid"
	KindInvalidRefName            Kind = "invalid_ref_name"
	KindInvalidObject             Kind = "invalid_object"
	KindInvalidIndex              Kind = "invalid_index"
	KindTypeMismatch              Kind = "type_mismatch"
	KindInvalidUtf8               Kind = "invalid_utf8"
	KindDecompressionFailed       Kind = "decompression_failed"
	KindRefAlreadyExists          Kind = "ref_already_exists"
	KindCannotDeleteCurrentBranch Kind = "cannot_delete_current_branch"
	KindEmptyCommit               Kind = "empty_commit"
	KindDirtyWorkingTree          Kind = "dirty_working_tree"
	KindConfigNotFound            Kind = "config_not_found"
)

// Error is the single tagged error type for repository operations. Only the
// fields relevant to the Kind are populated.
type Error struct {
	Kind Kind

	Path     string // not_a_repository, already_a_repository, path_not_found
	Name     string // ref_not_found, ref_already_exists, config_not_found
	Text     string // invalid_oid, invalid_ref_name
	Oid      string // object_not_found, invalid_object
	Version  uint32 // invalid_index
	Expected string // type_mismatch
	Actual   string // type_mismatch
	Reason   string // invalid_object, invalid_index
	Err      error  // io
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIo:
		return fmt.Sprintf("I/O error: %v", e.Err)
	case KindNotARepository:
		return fmt.Sprintf("not a git repository: %s", e.Path)
	case KindAlreadyARepository:
		return fmt.Sprintf("repository already exists: %s", e.Path)
	case KindObjectNotFound:
		return fmt.Sprintf("object not found: %s", e.Oid)
	case KindRefNotFound:
		return fmt.Sprintf("reference not found: %s", e.Name)
	case KindPathNotFound:
		return fmt.Sprintf("path not found: %s", e.Path)
	case KindInvalidOid:
		return fmt.Sprintf("invalid object id: %s", e.Text)
	case KindInvalidRefName:
		return fmt.Sprintf("invalid reference name: %s", e.Text)
	case KindInvalidObject:
		return fmt.Sprintf("invalid object %s: %s", e.Oid, e.Reason)
	case KindInvalidIndex:
		return fmt.Sprintf("invalid index (version %d): %s", e.Version, e.Reason)
	case KindTypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
	case KindInvalidUtf8:
		return "invalid UTF-8 sequence"
	case KindDecompressionFailed:
		return "zlib decompression failed"
	case KindRefAlreadyExists:
		return fmt.Sprintf("reference already exists: %s", e.Name)
	case KindCannotDeleteCurrentBranch:
		return "cannot delete the current branch"
	case KindEmptyCommit:
		return "nothing to commit"
	case KindDirtyWorkingTree:
		return "working tree has uncommitted changes"
	case KindConfigNotFound:
		return fmt.Sprintf("configuration not found: %s", e.Name)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasKind reports whether err is (or wraps) a *Error with the given kind.
func HasKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}

// Io wraps an underlying I/O error.
func Io(err error) *Error {
	return &Error{Kind: KindIo, Err: err}
}

func NotARepository(path string) *Error {
	return &Error{Kind: KindNotARepository, Path: path}
}

func AlreadyARepository(path string) *Error {
	return &Error{Kind: KindAlreadyARepository, Path: path}
}

func ObjectNotFound(oid string) *Error {
	return &Error{Kind: KindObjectNotFound, Oid: oid}
}

func RefNotFound(name string) *Error {
	return &Error{Kind: KindRefNotFound, Name: name}
}

func PathNotFound(path string) *Error {
	return &Error{Kind: KindPathNotFound, Path: path}
}

func InvalidOid(text string) *Error {
	return &Error{Kind: KindInvalidOid, Text: text}
}

func InvalidRefName(text string) *Error {
	return &Error{Kind: KindInvalidRefName, Text: text}
}

func InvalidObject(oid, reason string) *Error {
	return &Error{Kind: KindInvalidObject, Oid: oid, Reason: reason}
}

func InvalidIndex(version uint32, reason string) *Error {
	return &Error{Kind: KindInvalidIndex, Version: version, Reason: reason}
}

func TypeMismatch(expected, actual string) *Error {
	return &Error{Kind: KindTypeMismatch, Expected: expected, Actual: actual}
}

func InvalidUtf8() *Error {
	return &Error{Kind: KindInvalidUtf8}
}

func DecompressionFailed() *Error {
	return &Error{Kind: KindDecompressionFailed}
}

func RefAlreadyExists(name string) *Error {
	return &Error{Kind: KindRefAlreadyExists, Name: name}
}

func CannotDeleteCurrentBranch() *Error {
	return &Error{Kind: KindCannotDeleteCurrentBranch}
}

func EmptyCommit() *Error {
	return &Error{Kind: KindEmptyCommit}
}

func DirtyWorkingTree() *Error {
	return &Error{Kind: KindDirtyWorkingTree}
}

func ConfigNotFound(key string) *Error {
	return &Error{Kind: KindConfigNotFound, Name: key}
}
