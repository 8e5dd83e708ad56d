package object

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grit/pkg/giterr"
)

// Store reads and writes loose objects under a Git objects directory, using
// the 2-character fan-out layout: objects/ab/cdef0123...
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the given objects directory
// (e.g. ".git/objects"). Fan-out subdirectories are created lazily on write.
func NewStore(objectsDir string) *Store {
	return &Store{dir: objectsDir}
}

// Path returns the filesystem path of the loose object file for oid.
func (s *Store) Path(oid Oid) string {
	hex := oid.Hex()
	return filepath.Join(s.dir, hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given OID.
func (s *Store) Has(oid Oid) bool {
	_, err := os.Stat(s.Path(oid))
	return err == nil
}

// Write stores a framed object "type len\0payload", deflated, under its
// content address. Writing an object that already exists is a no-op; the
// OID is returned either way. New objects land via temp file + rename so a
// concurrent reader never sees a torn file.
func (s *Store) Write(objType ObjectType, payload []byte) (Oid, error) {
	oid := HashObject(objType, payload)

	if s.Has(oid) {
		return oid, nil
	}

	framed := make([]byte, 0, len(payload)+32)
	framed = append(framed, []byte(fmt.Sprintf("%s %d\x00", objType, len(payload)))...)
	framed = append(framed, payload...)

	compressed, err := Compress(framed)
	if err != nil {
		return ZeroOid, fmt.Errorf("object write %s: %w", oid.Short(), err)
	}

	dest := s.Path(oid)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return ZeroOid, fmt.Errorf("object write mkdir: %w", giterr.Io(err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return ZeroOid, fmt.Errorf("object write tmpfile: %w", giterr.Io(err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ZeroOid, fmt.Errorf("object write: %w", giterr.Io(err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ZeroOid, fmt.Errorf("object write close: %w", giterr.Io(err))
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return ZeroOid, fmt.Errorf("object write rename: %w", giterr.Io(err))
	}

	return oid, nil
}

// ReadRaw retrieves an object by OID, returning its type and payload after
// inflating and validating the "type len\0" header.
func (s *Store) ReadRaw(oid Oid) (ObjectType, []byte, error) {
	compressed, err := os.ReadFile(s.Path(oid))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, giterr.ObjectNotFound(oid.Hex())
		}
		return "", nil, giterr.Io(err)
	}

	raw, err := Decompress(compressed)
	if err != nil {
		return "", nil, err
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, giterr.InvalidObject(oid.Hex(), "missing NUL in header")
	}

	header := string(raw[:nul])
	payload := raw[nul+1:]

	typeStr, sizeStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, giterr.InvalidObject(oid.Hex(), fmt.Sprintf("malformed header %q", header))
	}
	objType, ok := ParseObjectType(typeStr)
	if !ok {
		return "", nil, giterr.InvalidObject(oid.Hex(), fmt.Sprintf("unknown object type: %s", typeStr))
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return "", nil, giterr.InvalidObject(oid.Hex(), fmt.Sprintf("invalid size: %s", sizeStr))
	}
	if size != len(payload) {
		return "", nil, giterr.InvalidObject(oid.Hex(),
			fmt.Sprintf("size mismatch: header says %d but content is %d bytes", size, len(payload)))
	}

	return objType, payload, nil
}

// Read retrieves and decodes an object by OID.
func (s *Store) Read(oid Oid) (Object, error) {
	objType, payload, err := s.ReadRaw(oid)
	if err != nil {
		return nil, err
	}

	switch objType {
	case TypeBlob:
		return &Blob{Data: payload}, nil
	case TypeTree:
		return ParseTree(oid, payload)
	case TypeCommit:
		return ParseCommit(oid, payload)
	case TypeTag:
		return ParseTag(oid, payload)
	}
	return nil, giterr.InvalidObject(oid.Hex(), fmt.Sprintf("unknown object type: %s", objType))
}

// ReadBlob reads an object and requires it to be a blob.
func (s *Store) ReadBlob(oid Oid) (*Blob, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	blob, ok := obj.(*Blob)
	if !ok {
		return nil, giterr.TypeMismatch(string(TypeBlob), string(obj.Type()))
	}
	return blob, nil
}

// ReadTree reads an object and requires it to be a tree.
func (s *Store) ReadTree(oid Oid) (*Tree, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	tree, ok := obj.(*Tree)
	if !ok {
		return nil, giterr.TypeMismatch(string(TypeTree), string(obj.Type()))
	}
	return tree, nil
}

// ReadCommit reads an object and requires it to be a commit.
func (s *Store) ReadCommit(oid Oid) (*Commit, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	commit, ok := obj.(*Commit)
	if !ok {
		return nil, giterr.TypeMismatch(string(TypeCommit), string(obj.Type()))
	}
	return commit, nil
}

// ReadTag reads an object and requires it to be an annotated tag.
func (s *Store) ReadTag(oid Oid) (*TagObject, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	tag, ok := obj.(*TagObject)
	if !ok {
		return nil, giterr.TypeMismatch(string(TypeTag), string(obj.Type()))
	}
	return tag, nil
}

// ResolvePrefix resolves a 4-40 character hex prefix to the unique OID it
// abbreviates. Shorter or non-hex input fails with InvalidOid; no match is
// ObjectNotFound; two or more matches is an ambiguity error.
func (s *Store) ResolvePrefix(prefix string) (Oid, error) {
	if len(prefix) < 4 || len(prefix) > OidHexLen || !isHexString(prefix) {
		return ZeroOid, giterr.InvalidOid(prefix)
	}
	if len(prefix) == OidHexLen {
		return ParseOid(prefix)
	}

	prefix = strings.ToLower(prefix)
	fanout := filepath.Join(s.dir, prefix[:2])
	rest := prefix[2:]

	entries, err := os.ReadDir(fanout)
	if err != nil {
		if os.IsNotExist(err) {
			return ZeroOid, giterr.ObjectNotFound(prefix)
		}
		return ZeroOid, giterr.Io(err)
	}

	var matches []Oid
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, rest) {
			continue
		}
		oid, err := ParseOid(prefix[:2] + name)
		if err != nil {
			continue
		}
		matches = append(matches, oid)
	}

	switch len(matches) {
	case 0:
		return ZeroOid, giterr.ObjectNotFound(prefix)
	case 1:
		return matches[0], nil
	}
	return ZeroOid, giterr.InvalidOid(fmt.Sprintf("ambiguous prefix %s", prefix))
}
