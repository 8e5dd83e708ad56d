// Package refs reads, resolves, and updates the Git reference namespace:
// HEAD, refs/heads, refs/remotes, and refs/tags.
package refs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"grit/pkg/giterr"
	"grit/pkg/object"
)

// maxSymbolicDepth bounds symbolic-ref chains. Chains deeper than this are
// treated as cycles.
const maxSymbolicDepth = 10

// RefValue is the decoded content of a single ref file: either a direct OID
// or a symbolic pointer to another ref.
type RefValue struct {
	Symbolic bool
	// Target is the referenced ref name when Symbolic.
	Target string
	// Oid is the object ID when direct.
	Oid object.Oid
}

// ResolvedRef is a fully resolved reference.
type ResolvedRef struct {
	// Name is the final (non-symbolic) ref name.
	Name string
	Oid  object.Oid
}

// Head is the state of the HEAD reference.
type Head struct {
	// Detached is true when HEAD names a commit directly.
	Detached bool
	// Branch is the branch name (without refs/heads/) when attached.
	Branch string
	Oid    object.Oid
}

// Branch is a local branch head.
type Branch struct {
	Name string
	Oid  object.Oid
}

// RemoteBranch is a remote-tracking branch head.
type RemoteBranch struct {
	// Remote is the remote name, e.g. "origin".
	Remote string
	// Name is the branch name under the remote; it may contain slashes.
	Name string
	Oid  object.Oid
}

// Tag is a tag ref. Annotated tags carry the tag object's message and
// tagger; lightweight tags leave them empty.
type Tag struct {
	Name string
	// Oid is the object the ref file names: the tag object for annotated
	// tags, the commit for lightweight ones.
	Oid object.Oid
	// Target is the tagged object for annotated tags, equal to Oid otherwise.
	Target    object.Oid
	Annotated bool
	Message   string
	Tagger    *object.Signature
}

// Store reads and writes references under a .git directory.
type Store struct {
	gitDir string
}

// NewStore creates a ref store for the given .git directory.
func NewStore(gitDir string) *Store {
	return &Store{gitDir: gitDir}
}

// ReadRef loads and decodes a single ref file such as "HEAD" or
// "refs/heads/main". Trailing whitespace is trimmed; "ref: <target>" yields
// a symbolic value, anything else must be a 40-hex OID.
func (s *Store) ReadRef(name string) (RefValue, error) {
	data, err := os.ReadFile(filepath.Join(s.gitDir, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return RefValue{}, giterr.RefNotFound(name)
		}
		return RefValue{}, giterr.Io(err)
	}

	content := strings.TrimRight(string(data), " \t\r\n")
	if target, ok := strings.CutPrefix(content, "ref: "); ok {
		return RefValue{Symbolic: true, Target: target}, nil
	}

	oid, err := object.ParseOid(content)
	if err != nil {
		return RefValue{}, err
	}
	return RefValue{Oid: oid}, nil
}

// Resolve follows symbolic indirection from name until a direct ref is
// found. Chains longer than maxSymbolicDepth fail as a cycle.
func (s *Store) Resolve(name string) (ResolvedRef, error) {
	current := name
	for depth := 0; depth < maxSymbolicDepth; depth++ {
		val, err := s.ReadRef(current)
		if err != nil {
			return ResolvedRef{}, err
		}
		if !val.Symbolic {
			return ResolvedRef{Name: current, Oid: val.Oid}, nil
		}
		current = val.Target
	}
	return ResolvedRef{}, giterr.InvalidRefName(fmt.Sprintf("reference cycle or too many levels: %s", name))
}

// Head reads HEAD. A direct HEAD is detached; a symbolic HEAD under
// refs/heads/ is an attached branch whose OID comes from resolving the
// chain.
func (s *Store) Head() (Head, error) {
	val, err := s.ReadRef("HEAD")
	if err != nil {
		return Head{}, err
	}

	if !val.Symbolic {
		return Head{Detached: true, Oid: val.Oid}, nil
	}

	resolved, err := s.Resolve(val.Target)
	if err != nil {
		return Head{}, err
	}
	branch := strings.TrimPrefix(val.Target, "refs/heads/")
	return Head{Branch: branch, Oid: resolved.Oid}, nil
}

// CurrentBranch returns the branch HEAD is attached to, or false when HEAD
// is detached. Unlike Head, this works on an unborn branch.
func (s *Store) CurrentBranch() (string, bool, error) {
	val, err := s.ReadRef("HEAD")
	if err != nil {
		return "", false, err
	}
	if !val.Symbolic || !strings.HasPrefix(val.Target, "refs/heads/") {
		return "", false, nil
	}
	return strings.TrimPrefix(val.Target, "refs/heads/"), true, nil
}

// ResolveSpec resolves an arbitrary refspec: a full 40-hex OID is parsed
// directly, a name starting with refs/ (or HEAD itself) is used verbatim,
// anything else is tried under refs/heads/.
func (s *Store) ResolveSpec(spec string) (object.Oid, error) {
	if len(spec) == object.OidHexLen {
		if oid, err := object.ParseOid(spec); err == nil {
			return oid, nil
		}
	}

	name := spec
	if !strings.HasPrefix(spec, "refs/") && spec != "HEAD" {
		name = "refs/heads/" + spec
	}
	resolved, err := s.Resolve(name)
	if err != nil {
		if giterr.HasKind(err, giterr.KindRefNotFound) {
			return object.ZeroOid, giterr.RefNotFound(spec)
		}
		return object.ZeroOid, err
	}
	return resolved.Oid, nil
}

// Exists reports whether a ref file is present (without resolving it).
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(filepath.Join(s.gitDir, filepath.FromSlash(name)))
	return err == nil && !info.IsDir()
}

// Branches enumerates refs/heads recursively, sorted by name.
func (s *Store) Branches() ([]Branch, error) {
	names, err := s.walkRefs("refs/heads")
	if err != nil {
		return nil, err
	}

	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		resolved, err := s.Resolve("refs/heads/" + name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch{Name: name, Oid: resolved.Oid})
	}
	return branches, nil
}

// RemoteBranches enumerates refs/remotes recursively, sorted. The first
// path segment is the remote name; the rest is the branch name.
func (s *Store) RemoteBranches() ([]RemoteBranch, error) {
	names, err := s.walkRefs("refs/remotes")
	if err != nil {
		return nil, err
	}

	branches := make([]RemoteBranch, 0, len(names))
	for _, name := range names {
		resolved, err := s.Resolve("refs/remotes/" + name)
		if err != nil {
			return nil, err
		}
		remote, branch, ok := strings.Cut(name, "/")
		if !ok {
			continue
		}
		branches = append(branches, RemoteBranch{Remote: remote, Name: branch, Oid: resolved.Oid})
	}
	return branches, nil
}

// Tags enumerates refs/tags, reading each resolved object to distinguish
// annotated tags (a tag object, whose message and tagger are surfaced) from
// lightweight ones.
func (s *Store) Tags(store *object.Store) ([]Tag, error) {
	names, err := s.walkRefs("refs/tags")
	if err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		resolved, err := s.Resolve("refs/tags/" + name)
		if err != nil {
			return nil, err
		}

		tag := Tag{Name: name, Oid: resolved.Oid, Target: resolved.Oid}
		if obj, err := store.Read(resolved.Oid); err == nil {
			if tagObj, ok := obj.(*object.TagObject); ok {
				tag.Annotated = true
				tag.Target = tagObj.Object
				tag.Message = tagObj.Message
				tagger := tagObj.Tagger
				tag.Tagger = &tagger
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// walkRefs lists ref names (relative to prefix, slash-separated) under the
// given namespace. A missing namespace directory yields an empty list.
func (s *Store) walkRefs(prefix string) ([]string, error) {
	root := filepath.Join(s.gitDir, filepath.FromSlash(prefix))

	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, giterr.Io(err)
	}

	sort.Strings(names)
	return names, nil
}

// UpdateRef writes a direct ref atomically via temp file + rename, creating
// parent directories as needed.
func (s *Store) UpdateRef(name string, oid object.Oid) error {
	return s.writeRefFile(name, oid.Hex()+"\n")
}

// WriteSymbolic points a ref (normally HEAD) at another ref.
func (s *Store) WriteSymbolic(name, target string) error {
	return s.writeRefFile(name, "ref: "+target+"\n")
}

func (s *Store) writeRefFile(name, content string) error {
	refPath := filepath.Join(s.gitDir, filepath.FromSlash(name))
	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, giterr.Io(err))
	}

	tmp, err := os.CreateTemp(dir, ".ref-tmp-*")
	if err != nil {
		return fmt.Errorf("update ref %q: tmpfile: %w", name, giterr.Io(err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: write: %w", name, giterr.Io(err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: close: %w", name, giterr.Io(err))
	}
	if err := os.Rename(tmpName, refPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: rename: %w", name, giterr.Io(err))
	}
	return nil
}

// DeleteRef removes a ref file and garbage-collects emptied parent
// directories up to (not including) the top-level namespace directory
// such as refs/heads, which is kept even when empty.
func (s *Store) DeleteRef(name string) error {
	refPath := filepath.Join(s.gitDir, filepath.FromSlash(name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return giterr.RefNotFound(name)
		}
		return giterr.Io(err)
	}

	stop := filepath.Join(s.gitDir, "refs")
	dir := filepath.Dir(refPath)
	for strings.HasPrefix(dir, stop+string(filepath.Separator)) && filepath.Dir(dir) != stop {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
	return nil
}
