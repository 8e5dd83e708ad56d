package object

import (
	"encoding/hex"
	"strings"

	"grit/pkg/giterr"
)

// OidBytes is the length of a raw object ID.
const OidBytes = 20

// OidHexLen is the length of a fully spelled-out hex object ID.
const OidHexLen = 40

// shortHexLen is the abbreviated display length.
const shortHexLen = 7

// Oid is a 20-byte content-addressed object identifier. The zero value is
// the all-zeros OID, which never names a real object.
type Oid [OidBytes]byte

// ZeroOid is the all-zeros object ID.
var ZeroOid Oid

// ParseOid parses a 40-character hex string into an Oid. Uppercase hex is
// accepted; anything else fails with InvalidOid.
func ParseOid(s string) (Oid, error) {
	if len(s) != OidHexLen {
		return ZeroOid, giterr.InvalidOid(s)
	}
	raw, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return ZeroOid, giterr.InvalidOid(s)
	}
	var oid Oid
	copy(oid[:], raw)
	return oid, nil
}

// OidFromBytes builds an Oid from exactly 20 raw bytes.
func OidFromBytes(b []byte) (Oid, error) {
	if len(b) != OidBytes {
		return ZeroOid, giterr.InvalidOid(hex.EncodeToString(b))
	}
	var oid Oid
	copy(oid[:], b)
	return oid, nil
}

// Hex returns the canonical lowercase 40-character form.
func (o Oid) Hex() string {
	return hex.EncodeToString(o[:])
}

// Short returns the abbreviated 7-character form.
func (o Oid) Short() string {
	return o.Hex()[:shortHexLen]
}

// IsZero reports whether o is the all-zeros OID.
func (o Oid) IsZero() bool {
	return o == ZeroOid
}

func (o Oid) String() string {
	return o.Hex()
}

// isHexString reports whether s consists only of hex digits.
func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return len(s) > 0
}
