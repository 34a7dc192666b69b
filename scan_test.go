// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"testing"

	blobscan "github.com/hashicorp/go-blobscan"
)

// offsetsOf returns the match offsets per codec
func offsetsOf(matches []blobscan.Match) map[blobscan.CodecKind][]int {
	out := map[blobscan.CodecKind][]int{}
	for _, m := range matches {
		out[m.Signature.Codec] = append(out[m.Signature.Codec], m.Offset)
	}
	return out
}

func TestScanFirstOccurrence(t *testing.T) {
	buf := place(0x100, map[int][]byte{
		0x10: {0x78, 0x9C},
		0x40: {0x78, 0x9C},
		0x80: {0x1F, 0x8B},
	})

	matches := blobscan.Scan(buf, nil)
	if len(matches) != 2 {
		t.Fatalf("Scan() returned %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].Offset != 0x10 || matches[0].Signature.Codec != blobscan.CodecZlib {
		t.Errorf("first match = %v, want zlib at 0x10", matches[0])
	}
	if matches[1].Offset != 0x80 || matches[1].Signature.Codec != blobscan.CodecGzip {
		t.Errorf("second match = %v, want gzip at 0x80", matches[1])
	}
}

func TestScanAscendingOffsets(t *testing.T) {
	hello := []byte("hello world")
	buf := place(0x200, map[int][]byte{
		0x050: compress(t, blobscan.CodecZlib, hello),
		0x100: compress(t, blobscan.CodecGzip, hello),
	})

	matches := blobscan.DefaultCatalog().Scan(buf)
	offsets := offsetsOf(matches)
	if got := offsets[blobscan.CodecZlib]; len(got) != 1 || got[0] != 0x50 {
		t.Fatalf("zlib offsets = %v, want [0x50]", got)
	}
	if got := offsets[blobscan.CodecGzip]; len(got) != 1 || got[0] != 0x100 {
		t.Fatalf("gzip offsets = %v, want [0x100]", got)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Offset > matches[i].Offset {
			t.Errorf("matches not ordered by offset: %v", matches)
		}
	}
	if matches[0].Signature.Codec != blobscan.CodecZlib {
		t.Errorf("first match = %v, want zlib", matches[0])
	}
}

func TestScanAll(t *testing.T) {
	buf := place(0x100, map[int][]byte{
		0x10: {0x78, 0x9C},
		0x40: {0x78, 0xDA},
		0x60: {0x78, 0x9C},
		0x80: []byte("!CBD"),
	})

	matches := blobscan.DefaultCatalog().ScanAll(buf)
	want := []struct {
		offset int
		codec  blobscan.CodecKind
	}{
		{0x10, blobscan.CodecZlib},
		{0x40, blobscan.CodecZlib},
		{0x60, blobscan.CodecZlib},
		{0x80, blobscan.CodecContainer},
	}
	if len(matches) != len(want) {
		t.Fatalf("ScanAll() returned %d matches, want %d: %v", len(matches), len(want), matches)
	}
	for i, w := range want {
		if matches[i].Offset != w.offset || matches[i].Signature.Codec != w.codec {
			t.Errorf("match %d = %v, want %s at 0x%X", i, matches[i], w.codec, w.offset)
		}
	}
}

func TestScanAllNonOverlapping(t *testing.T) {
	sigA, err := blobscan.NewCatalog(blobscan.Signature{Pattern: []byte("AA"), Codec: blobscan.CodecZlib, Label: "AA"})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	matches := sigA.ScanAll([]byte("AAAAA"))
	offsets := offsetsOf(matches)[blobscan.CodecZlib]
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("ScanAll() offsets = %v, want [0 2]", offsets)
	}
}

func TestScanTiesInCatalogOrder(t *testing.T) {
	catalog, err := blobscan.NewCatalog(
		blobscan.Signature{Pattern: []byte("AB"), Codec: blobscan.CodecGzip, Label: "second"},
		blobscan.Signature{Pattern: []byte("A"), Codec: blobscan.CodecZlib, Label: "first"},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	matches := catalog.Scan([]byte("xxABxx"))
	if len(matches) != 2 {
		t.Fatalf("Scan() returned %d matches, want 2", len(matches))
	}
	if matches[0].Signature.Label != "second" || matches[1].Signature.Label != "first" {
		t.Errorf("Scan() = %v, want catalog order at shared offset", matches)
	}
}

func TestScanEmptyAndNoMatch(t *testing.T) {
	if got := blobscan.Scan(nil, nil); len(got) != 0 {
		t.Errorf("Scan(nil) = %v, want no matches", got)
	}
	if got := blobscan.Scan(place(64, nil), nil); len(got) != 0 {
		t.Errorf("Scan(filler) = %v, want no matches", got)
	}
	// pattern cut by buffer end
	if got := blobscan.Scan([]byte{0xAA, 'B', 'Z'}, nil); len(got) != 0 {
		t.Errorf("Scan(partial) = %v, want no matches", got)
	}
}

func TestMatchesStopsEarly(t *testing.T) {
	buf := place(0x100, map[int][]byte{
		0x10: {0x78, 0x9C},
		0x20: {0x1F, 0x8B},
		0x30: []byte("BZh"),
	})

	var seen []blobscan.Match
	for m := range blobscan.DefaultCatalog().Matches(buf, blobscan.ScanAll) {
		seen = append(seen, m)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 || seen[1].Offset != 0x20 {
		t.Errorf("Matches() yielded %v", seen)
	}

	// the sequence is restartable
	if n := len(blobscan.DefaultCatalog().ScanAll(buf)); n != 3 {
		t.Errorf("ScanAll() returned %d matches after early stop, want 3", n)
	}
}

func TestScanModeString(t *testing.T) {
	if blobscan.ScanFirst.String() != "first" || blobscan.ScanAll.String() != "all" {
		t.Errorf("unexpected scan mode names %s %s", blobscan.ScanFirst, blobscan.ScanAll)
	}
}
