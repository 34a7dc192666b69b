// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"errors"
	"testing"

	blobscan "github.com/hashicorp/go-blobscan"
)

func TestDefaultCatalog(t *testing.T) {
	tests := []struct {
		header []byte
		want   blobscan.CodecKind
		label  string
	}{
		{[]byte{0x78, 0x9C}, blobscan.CodecZlib, "zlib (deflate)"},
		{[]byte{0x78, 0xDA}, blobscan.CodecZlib, "zlib (deflate)"},
		{[]byte{0x1F, 0x8B}, blobscan.CodecGzip, "GZIP"},
		{[]byte("BZh"), blobscan.CodecBzip2, "BZIP2"},
		{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, blobscan.CodecLzma, "LZMA"},
		{[]byte{0x50, 0x4B, 0x03, 0x04}, blobscan.CodecZip, "ZIP"},
		{[]byte("!CBD"), blobscan.CodecContainer, "CBD container"},
	}

	catalog := blobscan.DefaultCatalog()
	if catalog.Len() != len(tests) {
		t.Errorf("DefaultCatalog() has %d signatures, want %d", catalog.Len(), len(tests))
	}
	for _, tt := range tests {
		sig, ok := catalog.MatchAt(tt.header, 0)
		if !ok {
			t.Errorf("MatchAt(% X) found no signature", tt.header)
			continue
		}
		if sig.Codec != tt.want || sig.Label != tt.label {
			t.Errorf("MatchAt(% X) = %v, want %s %q", tt.header, sig, tt.want, tt.label)
		}
	}
}

func TestExtendedCatalog(t *testing.T) {
	tests := []struct {
		header []byte
		want   blobscan.CodecKind
	}{
		{[]byte{0x78, 0x01}, blobscan.CodecZlib},
		{[]byte{0x28, 0xB5, 0x2F, 0xFD}, blobscan.CodecZstd},
		{[]byte{0x04, 0x22, 0x4D, 0x18}, blobscan.CodecLZ4},
		{[]byte("\xff\x06\x00\x00sNaPpY"), blobscan.CodecSnappy},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, blobscan.Codec7zip},
		{[]byte("Rar!\x1a\x07\x00"), blobscan.CodecRar},
		{[]byte("Rar!\x1a\x07\x01\x00"), blobscan.CodecRar},
		{[]byte{0x5D, 0x00, 0x00}, blobscan.CodecLzmaAlone},
	}

	for _, tt := range tests {
		if _, ok := blobscan.DefaultCatalog().MatchAt(tt.header, 0); ok {
			t.Errorf("DefaultCatalog().MatchAt(% X) matched an extended signature", tt.header)
		}
		sig, ok := blobscan.ExtendedCatalog().MatchAt(tt.header, 0)
		if !ok || sig.Codec != tt.want {
			t.Errorf("ExtendedCatalog().MatchAt(% X) = %v, %v, want %s", tt.header, sig, ok, tt.want)
		}
	}
}

func TestMatchAtLongestPattern(t *testing.T) {
	catalog, err := blobscan.NewCatalog(
		blobscan.Signature{Pattern: []byte("AB"), Codec: blobscan.CodecZlib, Label: "short"},
		blobscan.Signature{Pattern: []byte("ABCD"), Codec: blobscan.CodecGzip, Label: "long"},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if sig, _ := catalog.MatchAt([]byte("xABCD"), 1); sig.Label != "long" {
		t.Errorf("MatchAt() = %v, want the long pattern", sig)
	}
	if sig, _ := catalog.MatchAt([]byte("xABC"), 1); sig.Label != "short" {
		t.Errorf("MatchAt() = %v, want the short pattern", sig)
	}
	if _, ok := catalog.MatchAt([]byte("xABCD"), 5); ok {
		t.Errorf("MatchAt() past end matched")
	}
	if _, ok := catalog.MatchAt([]byte("xABCD"), -1); ok {
		t.Errorf("MatchAt() with negative offset matched")
	}
	if catalog.MaxPatternLength() != 4 {
		t.Errorf("MaxPatternLength() = %d, want 4", catalog.MaxPatternLength())
	}
}

func TestNewCatalogCopiesPatterns(t *testing.T) {
	pattern := []byte("XY")
	catalog, err := blobscan.NewCatalog(blobscan.Signature{Pattern: pattern, Codec: blobscan.CodecZlib})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	pattern[0] = 'Q'

	if _, ok := catalog.MatchAt([]byte("XY"), 0); !ok {
		t.Errorf("catalog changed with the callers pattern")
	}
	sigs := catalog.Signatures()
	sigs[0].Label = "changed"
	if catalog.Signatures()[0].Label == "changed" {
		t.Errorf("Signatures() exposes internal state")
	}
}

func TestNewCatalogRejectsEmptyPattern(t *testing.T) {
	_, err := blobscan.NewCatalog(blobscan.Signature{Label: "empty"})
	if !errors.Is(err, blobscan.ErrInvalidArgument) {
		t.Errorf("NewCatalog() error = %v, want %v", err, blobscan.ErrInvalidArgument)
	}
}
