package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"grit/pkg/giterr"
)

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// ParseTree parses a tree payload. Each entry is
// "<octal-mode> <name>\0<20-byte-oid>", concatenated. The on-disk entry
// order is preserved; parsing never resorts.
func ParseTree(oid Oid, payload []byte) (*Tree, error) {
	tree := &Tree{}
	pos := 0

	for pos < len(payload) {
		space := bytes.IndexByte(payload[pos:], ' ')
		if space < 0 {
			return nil, giterr.InvalidObject(oid.Hex(), "missing space in tree entry")
		}
		modeStr := string(payload[pos : pos+space])
		mode, ok := ParseFileMode(modeStr)
		if !ok {
			return nil, giterr.InvalidObject(oid.Hex(), fmt.Sprintf("unknown file mode: %s", modeStr))
		}
		pos += space + 1

		nul := bytes.IndexByte(payload[pos:], 0)
		if nul < 0 {
			return nil, giterr.InvalidObject(oid.Hex(), "missing NUL in tree entry")
		}
		name := string(payload[pos : pos+nul])
		pos += nul + 1

		if pos+OidBytes > len(payload) {
			return nil, giterr.InvalidObject(oid.Hex(), "truncated object id in tree entry")
		}
		var entryOid Oid
		copy(entryOid[:], payload[pos:pos+OidBytes])
		pos += OidBytes

		tree.Entries = append(tree.Entries, TreeEntry{Mode: mode, Name: name, Oid: entryOid})
	}

	return tree, nil
}

// MarshalTree serializes a tree in Git's canonical order: byte-lexicographic
// on name, with subtree names compared as if suffixed by "/".
func MarshalTree(t *Tree) []byte {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return treeSortKey(sorted[i]) < treeSortKey(sorted[j])
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteString(e.Mode.Octal())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Oid[:])
	}
	return buf.Bytes()
}

func treeSortKey(e TreeEntry) string {
	if e.Mode.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// ParseCommit parses a commit payload. Headers run until the first empty
// line; everything after it is the message, verbatim. Unknown headers and
// multi-line header continuations (GPG signatures) are skipped.
func ParseCommit(oid Oid, payload []byte) (*Commit, error) {
	header, message := splitHeaderMessage(payload)

	c := &Commit{Oid: oid, Message: message}
	var haveTree, haveAuthor, haveCommitter bool

	for _, line := range strings.Split(header, "\n") {
		if line == "" {
			continue
		}
		if line[0] == ' ' {
			// Continuation of a multi-line header such as gpgsig.
			continue
		}

		switch {
		case strings.HasPrefix(line, "tree "):
			tree, err := ParseOid(line[len("tree "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed tree header")
			}
			c.Tree = tree
			haveTree = true
		case strings.HasPrefix(line, "parent "):
			parent, err := ParseOid(line[len("parent "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed parent header")
			}
			c.Parents = append(c.Parents, parent)
		case strings.HasPrefix(line, "author "):
			sig, err := ParseSignature(line[len("author "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed author signature")
			}
			c.Author = sig
			haveAuthor = true
		case strings.HasPrefix(line, "committer "):
			sig, err := ParseSignature(line[len("committer "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed committer signature")
			}
			c.Committer = sig
			haveCommitter = true
		}
		// Other headers (gpgsig, encoding, ...) are ignored.
	}

	switch {
	case !haveTree:
		return nil, giterr.InvalidObject(oid.Hex(), "missing tree")
	case !haveAuthor:
		return nil, giterr.InvalidObject(oid.Hex(), "missing author")
	case !haveCommitter:
		return nil, giterr.InvalidObject(oid.Hex(), "missing committer")
	}

	return c, nil
}

// MarshalCommit serializes a commit payload: tree, parent lines in order,
// author, committer, blank line, message.
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree.Hex())
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p.Hex())
	}
	fmt.Fprintf(&buf, "author %s\n", FormatSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", FormatSignature(c.Committer))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// splitHeaderMessage splits an object payload at the first blank line. The
// message keeps its bytes verbatim, trailing newlines included.
func splitHeaderMessage(payload []byte) (header, message string) {
	if i := bytes.Index(payload, []byte("\n\n")); i >= 0 {
		return string(payload[:i]), string(payload[i+2:])
	}
	return string(payload), ""
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// ParseSignature parses "Name <email> seconds ±HHMM". The email is located
// by the last '<'/'>' pair so names containing angle brackets still parse.
func ParseSignature(s string) (Signature, error) {
	malformed := fmt.Errorf("malformed signature %q", s)

	emailEnd := strings.LastIndexByte(s, '>')
	if emailEnd < 0 {
		return Signature{}, malformed
	}
	emailStart := strings.LastIndexByte(s[:emailEnd], '<')
	if emailStart < 0 {
		return Signature{}, malformed
	}

	name := strings.TrimSpace(s[:emailStart])
	email := s[emailStart+1 : emailEnd]

	rest := strings.Fields(s[emailEnd+1:])
	if len(rest) != 2 {
		return Signature{}, malformed
	}
	when, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, malformed
	}
	tz, err := parseTimezone(rest[1])
	if err != nil {
		return Signature{}, malformed
	}

	return Signature{Name: name, Email: email, When: when, TzOffset: tz}, nil
}

// FormatSignature renders a signature in wire form.
func FormatSignature(sig Signature) string {
	return fmt.Sprintf("%s <%s> %d %s", sig.Name, sig.Email, sig.When, formatTimezone(sig.TzOffset))
}

// parseTimezone parses "+0900"-style offsets into minutes.
func parseTimezone(s string) (int32, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	var sign int32
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	minutes, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	return sign * int32(hours*60+minutes), nil
}

func formatTimezone(offset int32) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/60, offset%60)
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// ParseTag parses an annotated tag payload: object, type, tag, tagger
// headers, then a blank line and the message.
func ParseTag(oid Oid, payload []byte) (*TagObject, error) {
	header, message := splitHeaderMessage(payload)

	t := &TagObject{Message: message}
	var haveObject, haveType, haveName, haveTagger bool

	for _, line := range strings.Split(header, "\n") {
		if line == "" || line[0] == ' ' {
			continue
		}

		switch {
		case strings.HasPrefix(line, "object "):
			target, err := ParseOid(line[len("object "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed object header")
			}
			t.Object = target
			haveObject = true
		case strings.HasPrefix(line, "type "):
			t.ObjectType = line[len("type "):]
			haveType = true
		case strings.HasPrefix(line, "tag "):
			t.Name = line[len("tag "):]
			haveName = true
		case strings.HasPrefix(line, "tagger "):
			sig, err := ParseSignature(line[len("tagger "):])
			if err != nil {
				return nil, giterr.InvalidObject(oid.Hex(), "malformed tagger signature")
			}
			t.Tagger = sig
			haveTagger = true
		}
	}

	switch {
	case !haveObject:
		return nil, giterr.InvalidObject(oid.Hex(), "missing object")
	case !haveType:
		return nil, giterr.InvalidObject(oid.Hex(), "missing type")
	case !haveName:
		return nil, giterr.InvalidObject(oid.Hex(), "missing tag name")
	case !haveTagger:
		return nil, giterr.InvalidObject(oid.Hex(), "missing tagger")
	}

	return t, nil
}
