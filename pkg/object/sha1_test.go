package object

import (
	"encoding/hex"
	"strings"
	"testing"
)

// RFC 3174 / FIPS 180-1 test vectors plus the well-known git digests the
// rest of the engine depends on.
func TestSha1Vectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"hello world", "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "84983e441c3bd26ebaae4aa1f95129e5e54670f1"},
	}

	for _, c := range cases {
		got := hex.EncodeToString(sumOf([]byte(c.in)))
		if got != c.want {
			t.Errorf("Sha1(%q): got %s, want %s", c.in, got, c.want)
		}
	}
}

func sumOf(data []byte) []byte {
	sum := Sha1(data)
	return sum[:]
}

// One million 'a' bytes, fed in uneven chunks to exercise the incremental
// buffering path.
func TestSha1MillionA(t *testing.T) {
	const want = "34aa973cd4c4daa4f61eeb2bdbad27316534016f"

	s := newSha1()
	chunk := []byte(strings.Repeat("a", 1000))
	for i := 0; i < 1000; i++ {
		s.update(chunk)
	}
	sum := s.sum()
	if got := hex.EncodeToString(sum[:]); got != want {
		t.Errorf("Sha1(1M * 'a'): got %s, want %s", got, want)
	}
}

func TestSha1IncrementalMatchesOneShot(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog, repeatedly, across block boundaries.")

	for _, split := range []int{1, 7, 63, 64, 65} {
		if split > len(data) {
			continue
		}
		s := newSha1()
		s.update(data[:split])
		s.update(data[split:])
		if s.sum() != Sha1(data) {
			t.Errorf("incremental sum with split %d differs from one-shot", split)
		}
	}
}

func TestHashObjectFraming(t *testing.T) {
	payload := []byte("hello")

	// The framed digest must equal SHA-1 of "blob 5\x00hello".
	framed := append([]byte("blob 5\x00"), payload...)
	if HashObject(TypeBlob, payload) != HashBytes(framed) {
		t.Error("HashObject does not match SHA-1 of the framed form")
	}

	if HashObject(TypeBlob, payload) == HashBytes(payload) {
		t.Error("HashObject should differ from HashBytes due to framing")
	}
	if HashObject(TypeBlob, payload) == HashObject(TypeCommit, payload) {
		t.Error("different kinds should produce different digests")
	}
}

// The empty tree OID is a constant every git implementation agrees on.
func TestHashObjectEmptyTree(t *testing.T) {
	const want = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	if got := HashObject(TypeTree, nil).Hex(); got != want {
		t.Errorf("empty tree: got %s, want %s", got, want)
	}
}
