// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"fmt"
	"iter"
)

// ScanMode selects how many occurrences of a signature are reported.
type ScanMode int

const (
	// ScanFirst reports only the first occurrence of every signature.
	ScanFirst ScanMode = iota

	// ScanAll reports every non-overlapping occurrence of every signature.
	ScanAll
)

// String returns the name of the scan mode.
func (m ScanMode) String() string {
	if m == ScanAll {
		return "all"
	}
	return "first"
}

// Match is a signature found at an offset of a scanned buffer.
type Match struct {
	// Offset is the index of the first pattern byte, 0 <= Offset < len(buf).
	Offset int

	// Signature is the matched catalog entry.
	Signature Signature
}

// String returns the offset in hex and the signature label.
func (m Match) String() string {
	return fmt.Sprintf("0x%08X %s", m.Offset, m.Signature.Label)
}

// Matches returns a lazy sequence of signature matches in buf.
//
// Matches are yielded in ascending offset order. Matches of different
// signatures at the same offset are yielded in catalog order. In ScanFirst
// mode every signature is yielded at most once, at its lowest offset, and the
// walk stops as soon as every signature has been found. In ScanAll mode the
// occurrences of one signature never overlap each other; occurrences of
// different signatures may overlap.
//
// The sequence holds no state between iterations and can be ranged over
// multiple times.
func (c *Catalog) Matches(buf []byte, mode ScanMode) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		// next is the lowest offset at which a signature may match again
		next := make([]int, len(c.signatures))
		found := 0

		for off := 0; off < len(buf); off++ {
			for _, idx := range c.byFirstByte[buf[off]] {
				if off < next[idx] {
					continue
				}
				sig := c.signatures[idx]
				if !bytes.HasPrefix(buf[off:], sig.Pattern) {
					continue
				}
				if !yield(Match{Offset: off, Signature: sig}) {
					return
				}

				if mode == ScanAll {
					next[idx] = off + len(sig.Pattern)
					continue
				}

				// first occurrence only, disable the signature
				next[idx] = len(buf)
				found++
				if found == len(c.signatures) {
					return
				}
			}
		}
	}
}

// Scan returns the first occurrence of every signature in buf, ordered by
// ascending offset. Signatures without an occurrence are absent from the
// result.
func (c *Catalog) Scan(buf []byte) []Match {
	return collect(c.Matches(buf, ScanFirst))
}

// ScanAll returns every non-overlapping occurrence of every signature in buf,
// ordered by ascending offset.
func (c *Catalog) ScanAll(buf []byte) []Match {
	return collect(c.Matches(buf, ScanAll))
}

// Scan returns the first occurrence of every signature of catalog in buf.
// The default catalog is used if catalog is nil.
func Scan(buf []byte, catalog *Catalog) []Match {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return catalog.Scan(buf)
}

// collect drains a match sequence into a slice
func collect(seq iter.Seq[Match]) []Match {
	var matches []Match
	for m := range seq {
		matches = append(matches, m)
	}
	return matches
}
