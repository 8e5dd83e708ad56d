package object

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"grit/pkg/giterr"
)

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// ParseObjectType maps a header type name to an ObjectType.
func ParseObjectType(s string) (ObjectType, bool) {
	switch s {
	case "blob":
		return TypeBlob, true
	case "tree":
		return TypeTree, true
	case "commit":
		return TypeCommit, true
	case "tag":
		return TypeTag, true
	}
	return "", false
}

// FileMode is the mode of a tree or index entry, stored in Git's numeric
// form (octal value, e.g. 0o100644).
type FileMode uint32

const (
	ModeRegular    FileMode = 0o100644
	ModeExecutable FileMode = 0o100755
	ModeSymlink    FileMode = 0o120000
	ModeDir        FileMode = 0o040000
	ModeSubmodule  FileMode = 0o160000
)

// ParseFileMode maps an octal mode string (as it appears in tree entries,
// without a leading zero) to a FileMode.
func ParseFileMode(s string) (FileMode, bool) {
	switch s {
	case "100644", "644":
		return ModeRegular, true
	case "100755", "755":
		return ModeExecutable, true
	case "120000":
		return ModeSymlink, true
	case "40000":
		return ModeDir, true
	case "160000":
		return ModeSubmodule, true
	}
	return 0, false
}

// Octal returns the wire form of the mode, without a leading zero.
func (m FileMode) Octal() string {
	switch m {
	case ModeRegular:
		return "100644"
	case ModeExecutable:
		return "100755"
	case ModeSymlink:
		return "120000"
	case ModeDir:
		return "40000"
	case ModeSubmodule:
		return "160000"
	}
	return ""
}

// IsFile reports whether the mode names blob content (regular, executable
// or symlink).
func (m FileMode) IsFile() bool {
	return m == ModeRegular || m == ModeExecutable || m == ModeSymlink
}

// IsDir reports whether the mode names a subtree.
func (m FileMode) IsDir() bool {
	return m == ModeDir
}

// IsExecutable reports whether the executable bit is set.
func (m FileMode) IsExecutable() bool {
	return m == ModeExecutable
}

// Object is the tagged union over the four loose object kinds. The concrete
// types are *Blob, *Tree, *Commit, and *TagObject.
type Object interface {
	Type() ObjectType
}

// Blob holds raw file content.
type Blob struct {
	Data []byte
}

func (b *Blob) Type() ObjectType { return TypeBlob }

// IsBinary reports whether the content contains a NUL byte. This is the
// same heuristic Git uses for its binary/text decision.
func (b *Blob) IsBinary() bool {
	return bytes.IndexByte(b.Data, 0) >= 0
}

// Text returns the content as a string, failing with InvalidUtf8 when the
// bytes are not valid UTF-8.
func (b *Blob) Text() (string, error) {
	if !utf8.Valid(b.Data) {
		return "", giterr.InvalidUtf8()
	}
	return string(b.Data), nil
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode FileMode
	Name string
	Oid  Oid
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode.IsDir() }

// Tree is an ordered directory listing. Parsed trees preserve the on-disk
// entry order.
type Tree struct {
	Entries []TreeEntry
}

func (t *Tree) Type() ObjectType { return TypeTree }

// Get finds an entry by name.
func (t *Tree) Get(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Signature identifies an author, committer, or tagger at a point in time.
type Signature struct {
	Name  string
	Email string
	// When is the unix timestamp in seconds.
	When int64
	// TzOffset is the timezone offset in minutes east of UTC
	// (+0900 = 540, -0500 = -300).
	TzOffset int32
}

// Commit is a snapshot of the tree plus its ancestry and metadata. The Oid
// field carries the commit's own identity; it is not part of the framed
// bytes, it is recorded at parse time for downstream use.
type Commit struct {
	Oid       Oid
	Tree      Oid
	Parents   []Oid
	Author    Signature
	Committer Signature
	Message   string
}

func (c *Commit) Type() ObjectType { return TypeCommit }

// Parent returns the first (mainline) parent.
func (c *Commit) Parent() (Oid, bool) {
	if len(c.Parents) == 0 {
		return ZeroOid, false
	}
	return c.Parents[0], true
}

// Summary returns the first line of the commit message.
func (c *Commit) Summary() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// TagObject is an annotated tag. Lightweight tags never produce one; they
// are plain refs naming a commit directly.
type TagObject struct {
	Object     Oid
	ObjectType string
	Name       string
	Tagger     Signature
	Message    string
}

func (t *TagObject) Type() ObjectType { return TypeTag }
