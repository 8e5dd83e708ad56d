package object

import (
	"bytes"
	"testing"

	"grit/pkg/giterr"
)

func TestCompressRoundTrip(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("hello world"),
		bytes.Repeat([]byte("abcdefgh"), 4096),
	} {
		compressed, err := Compress(data)
		if err != nil {
			t.Fatalf("Compress: %v", err)
		}
		got, err := Decompress(compressed)
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("round trip mismatch for %d bytes", len(data))
		}
	}
}

func TestDecompressRejectsBadInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":            nil,
		"one byte":         {0x78},
		"bad method":       {0x77, 0x9C},       // CM != 8
		"bad checksum":     {0x78, 0x00},       // (CMF*256+FLG) % 31 != 0
		"truncated stream": {0x78, 0x9C, 0x01}, // valid header, no body
	}
	for name, data := range cases {
		if _, err := Decompress(data); !giterr.HasKind(err, giterr.KindDecompressionFailed) {
			t.Errorf("%s: expected DecompressionFailed, got %v", name, err)
		}
	}
}

func TestDecompressHeaderValidation(t *testing.T) {
	if !validZlibHeader(0x78, 0x9C) {
		t.Error("0x789C (level 6) rejected")
	}
	if !validZlibHeader(0x78, 0x01) {
		t.Error("0x7801 (level 0) rejected")
	}
	if validZlibHeader(0x79, 0x9C) {
		t.Error("CM=9 accepted")
	}
	if validZlibHeader(0x88, 0x9C) {
		t.Error("CINFO=8 accepted")
	}
}
