package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"grit/pkg/giterr"
	"grit/pkg/object"
)

// indexSignature is the magic at the start of the file.
var indexSignature = []byte("DIRC")

const (
	minVersion = 2
	maxVersion = 4

	// fixedEntryLen is the byte length of an entry up through the flags
	// field (ten u32 stat words, 20-byte OID, u16 flags).
	fixedEntryLen = 62

	// flagsNameMask holds min(name_len, 0xFFF).
	flagsNameMask = 0x0FFF
	// flagsExtended marks a v3+ entry carrying an extra flags word.
	flagsExtended = 0x4000
	// flagsStageShift positions the two stage bits.
	flagsStageShift = 12
)

// Parse decodes an index file. The trailing SHA-1 is not verified: fixtures
// written by other tools occasionally carry stale trailers, and a corrupt
// body fails entry parsing on its own. Serialization always writes a
// correct trailer.
func Parse(data []byte) (*Index, error) {
	if len(data) < 12 {
		return nil, giterr.InvalidIndex(0, "truncated header")
	}
	if !bytes.Equal(data[:4], indexSignature) {
		return nil, giterr.InvalidIndex(0, fmt.Sprintf("invalid signature: expected DIRC, got %q", data[:4]))
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version < minVersion || version > maxVersion {
		return nil, giterr.InvalidIndex(version, fmt.Sprintf("unsupported version: %d (supported: 2-4)", version))
	}
	entryCount := binary.BigEndian.Uint32(data[8:12])

	idx := &Index{Version: version}
	pos := 12
	for i := uint32(0); i < entryCount; i++ {
		entry, next, err := parseEntry(data, pos, version)
		if err != nil {
			return nil, err
		}
		idx.Entries = append(idx.Entries, entry)
		pos = next
	}

	return idx, nil
}

// parseEntry decodes one entry starting at pos, returning the entry and the
// offset of the next one (after NUL padding to 8-byte alignment from the
// entry's own start).
func parseEntry(data []byte, pos int, version uint32) (Entry, int, error) {
	entryStart := pos
	if pos+fixedEntryLen > len(data) {
		return Entry{}, 0, giterr.InvalidIndex(version, "truncated entry")
	}

	u32 := func(off int) uint32 {
		return binary.BigEndian.Uint32(data[pos+off:])
	}

	modeRaw := u32(24)
	mode, err := parseIndexMode(modeRaw, version)
	if err != nil {
		return Entry{}, 0, err
	}

	oid, _ := object.OidFromBytes(data[pos+40 : pos+60])
	flags := binary.BigEndian.Uint16(data[pos+60:])

	entry := Entry{
		CtimeSec:  u32(0),
		CtimeNsec: u32(4),
		MtimeSec:  u32(8),
		MtimeNsec: u32(12),
		Dev:       u32(16),
		Ino:       u32(20),
		Mode:      mode,
		Uid:       u32(28),
		Gid:       u32(32),
		Size:      u32(36),
		Oid:       oid,
		Stage:     uint8(flags >> flagsStageShift & 0x3),
	}
	pos += fixedEntryLen

	if version >= 3 && flags&flagsExtended != 0 {
		if pos+2 > len(data) {
			return Entry{}, 0, giterr.InvalidIndex(version, "truncated extended flags")
		}
		// Extended flags (skip-worktree, intent-to-add) are skipped.
		pos += 2
	}

	nameLen := int(flags & flagsNameMask)
	if nameLen == flagsNameMask {
		// Long name: stored NUL-terminated.
		nul := bytes.IndexByte(data[pos:], 0)
		if nul < 0 {
			return Entry{}, 0, giterr.InvalidIndex(version, "unterminated long entry name")
		}
		entry.Path = string(data[pos : pos+nul])
		pos += nul
	} else {
		if pos+nameLen > len(data) {
			return Entry{}, 0, giterr.InvalidIndex(version, "truncated entry name")
		}
		entry.Path = string(data[pos : pos+nameLen])
		pos += nameLen
	}

	// 1-8 NUL bytes pad the entry to 8-byte alignment from its start.
	pad := 8 - (pos-entryStart)%8
	if pos+pad > len(data) {
		return Entry{}, 0, giterr.InvalidIndex(version, "truncated entry padding")
	}
	pos += pad

	return entry, pos, nil
}

// parseIndexMode maps the stored 32-bit mode to a FileMode. Regular files
// with unusual permission bits collapse to ModeRegular, matching Git.
func parseIndexMode(mode, version uint32) (object.FileMode, error) {
	switch object.FileMode(mode) {
	case object.ModeRegular, object.ModeExecutable, object.ModeSymlink, object.ModeSubmodule:
		return object.FileMode(mode), nil
	}
	if mode&0o170000 == 0o100000 {
		return object.ModeRegular, nil
	}
	return 0, giterr.InvalidIndex(version, fmt.Sprintf("unknown file mode: %o", mode))
}

// Marshal serializes the index: header, entries sorted by (path, stage),
// then a SHA-1 trailer over everything preceding it.
func Marshal(idx *Index) []byte {
	idx.sortEntries()

	var buf bytes.Buffer
	buf.Write(indexSignature)
	writeU32(&buf, idx.Version)
	writeU32(&buf, uint32(len(idx.Entries)))

	for i := range idx.Entries {
		marshalEntry(&buf, &idx.Entries[i])
	}

	trailer := object.HashBytes(buf.Bytes())
	buf.Write(trailer[:])
	return buf.Bytes()
}

func marshalEntry(buf *bytes.Buffer, e *Entry) {
	entryStart := buf.Len()

	writeU32(buf, e.CtimeSec)
	writeU32(buf, e.CtimeNsec)
	writeU32(buf, e.MtimeSec)
	writeU32(buf, e.MtimeNsec)
	writeU32(buf, e.Dev)
	writeU32(buf, e.Ino)
	writeU32(buf, uint32(e.Mode))
	writeU32(buf, e.Uid)
	writeU32(buf, e.Gid)
	writeU32(buf, e.Size)
	buf.Write(e.Oid[:])

	path := normalizePath(e.Path)
	nameLen := len(path)
	if nameLen > flagsNameMask {
		nameLen = flagsNameMask
	}
	flags := uint16(nameLen) | uint16(e.Stage)<<flagsStageShift
	var flagBytes [2]byte
	binary.BigEndian.PutUint16(flagBytes[:], flags)
	buf.Write(flagBytes[:])

	buf.WriteString(path)

	pad := 8 - (buf.Len()-entryStart)%8
	for i := 0; i < pad; i++ {
		buf.WriteByte(0)
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// normalizePath converts separators to forward slashes for the wire form.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
