// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"fmt"
)

// Signature maps a magic byte pattern to a codec.
type Signature struct {
	// Pattern is the byte sequence that starts a region of the codec.
	Pattern []byte

	// Codec is the codec used to decode a region starting with Pattern.
	Codec CodecKind

	// Label is a human readable description, e.g. "zlib (deflate)".
	Label string
}

// String returns the label and the pattern in hex.
func (s Signature) String() string {
	return fmt.Sprintf("%s [% X]", s.Label, s.Pattern)
}

// Catalog is an ordered, read-only set of signatures. A Catalog is safe for
// concurrent use.
type Catalog struct {
	signatures []Signature

	// byFirstByte indexes signatures by their first pattern byte
	byFirstByte [256][]int

	// maxPatternLength is the length of the longest pattern
	maxPatternLength int
}

// NewCatalog creates a catalog from sigs. The order of sigs is preserved and
// decides the order of matches that share an offset. Signatures with an
// empty pattern are rejected.
func NewCatalog(sigs ...Signature) (*Catalog, error) {
	c := &Catalog{signatures: make([]Signature, 0, len(sigs))}
	for _, sig := range sigs {
		if len(sig.Pattern) == 0 {
			return nil, fmt.Errorf("%w: empty pattern for %s", ErrInvalidArgument, sig.Label)
		}

		// copy the pattern, the catalog must not change behind the callers back
		sig.Pattern = bytes.Clone(sig.Pattern)
		c.byFirstByte[sig.Pattern[0]] = append(c.byFirstByte[sig.Pattern[0]], len(c.signatures))
		c.signatures = append(c.signatures, sig)
		if len(sig.Pattern) > c.maxPatternLength {
			c.maxPatternLength = len(sig.Pattern)
		}
	}
	return c, nil
}

// mustCatalog panics if the builtin signature tables are inconsistent
func mustCatalog(sigs ...Signature) *Catalog {
	c, err := NewCatalog(sigs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Signatures returns a copy of the signatures in catalog order.
func (c *Catalog) Signatures() []Signature {
	out := make([]Signature, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// Len returns the number of signatures.
func (c *Catalog) Len() int {
	return len(c.signatures)
}

// MaxPatternLength returns the length of the longest pattern in the catalog.
func (c *Catalog) MaxPatternLength() int {
	return c.maxPatternLength
}

// MatchAt returns the longest signature whose pattern starts exactly at
// offset in buf. The second return value is false if no signature matches.
func (c *Catalog) MatchAt(buf []byte, offset int) (Signature, bool) {
	if offset < 0 || offset >= len(buf) {
		return Signature{}, false
	}

	best := -1
	for _, idx := range c.byFirstByte[buf[offset]] {
		if !bytes.HasPrefix(buf[offset:], c.signatures[idx].Pattern) {
			continue
		}
		if best == -1 || len(c.signatures[idx].Pattern) > len(c.signatures[best].Pattern) {
			best = idx
		}
	}
	if best == -1 {
		return Signature{}, false
	}
	return c.signatures[best], true
}

// signaturesFor expands a magic byte table into signatures of one codec
func signaturesFor(codec CodecKind, label string, magicBytes [][]byte) []Signature {
	sigs := make([]Signature, 0, len(magicBytes))
	for _, mb := range magicBytes {
		sigs = append(sigs, Signature{Pattern: mb, Codec: codec, Label: label})
	}
	return sigs
}

// defaultSignatures is the signature table of the probed container format
func defaultSignatures() []Signature {
	var sigs []Signature
	sigs = append(sigs, signaturesFor(CodecZlib, "zlib (deflate)", magicBytesZlib)...)
	sigs = append(sigs, signaturesFor(CodecGzip, "GZIP", magicBytesGZip)...)
	sigs = append(sigs, signaturesFor(CodecBzip2, "BZIP2", magicBytesBzip2)...)
	sigs = append(sigs, signaturesFor(CodecLzma, "LZMA", magicBytesXz)...)
	sigs = append(sigs, signaturesFor(CodecZip, "ZIP", magicBytesZip)...)
	sigs = append(sigs, signaturesFor(CodecContainer, "CBD container", magicBytesContainer)...)
	return sigs
}

// extendedSignatures are additional codecs that are not expected in the
// probed container format but are cheap to detect
func extendedSignatures() []Signature {
	var sigs []Signature
	sigs = append(sigs, signaturesFor(CodecZlib, "zlib (deflate, low level)", magicBytesZlibLowLevels)...)
	sigs = append(sigs, signaturesFor(CodecZstd, "Zstandard", magicBytesZstd)...)
	sigs = append(sigs, signaturesFor(CodecLZ4, "LZ4 frame", magicBytesLZ4)...)
	sigs = append(sigs, signaturesFor(CodecSnappy, "Snappy framed", magicBytesSnappy)...)
	sigs = append(sigs, signaturesFor(Codec7zip, "7-Zip", magicBytes7zip)...)
	sigs = append(sigs, signaturesFor(CodecRar, "RAR", magicBytesRar)...)
	sigs = append(sigs, signaturesFor(CodecLzmaAlone, "LZMA (alone)", magicBytesLzmaAlone)...)
	return sigs
}

var (
	defaultCatalog  = mustCatalog(defaultSignatures()...)
	extendedCatalog = mustCatalog(append(defaultSignatures(), extendedSignatures()...)...)
)

// DefaultCatalog returns the process wide catalog with the zlib, gzip, bzip2,
// lzma, zip and "!CBD" container signatures.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// ExtendedCatalog returns the default catalog plus zstd, lz4, snappy, 7zip,
// rar, legacy lzma and the low level zlib headers.
func ExtendedCatalog() *Catalog {
	return extendedCatalog
}
