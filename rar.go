// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"io"

	"github.com/nwaples/rardecode"
)

// magicBytesRar are the magic bytes for Rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// decompressRar writes the content of all regular files in the rar archive
// to dst. Encrypted archives are not supported.
func decompressRar(data []byte, dst io.Writer) error {
	a, err := rardecode.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return err
	}
	return drainArchive(&rarWalker{a}, dst)
}

// rarWalker is an archiveWalker for Rar files
type rarWalker struct {
	r *rardecode.Reader
}

// Type returns the codec of rar archives
func (rw *rarWalker) Type() CodecKind {
	return CodecRar
}

// Next returns the next entry in the rar file
func (rw *rarWalker) Next() (archiveEntry, error) {
	fh, err := rw.r.Next()
	if err != nil {
		return nil, err
	}
	return &rarEntry{fh, rw.r}, nil
}

// rarEntry is an archiveEntry for Rar files
type rarEntry struct {
	f *rardecode.FileHeader
	r io.Reader
}

// Name returns the name of the file
func (re *rarEntry) Name() string {
	return re.f.Name
}

// Size returns the size of the file
func (re *rarEntry) Size() int64 {
	return re.f.UnPackedSize
}

// IsRegular returns true if the file is a regular file
func (re *rarEntry) IsRegular() bool {
	return !re.f.IsDir && re.f.Mode().IsRegular()
}

// Open returns a reader for the file. The rar reader is positioned at the
// entry, so the returned reader must be consumed before the next call to Next.
func (re *rarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(re.r), nil
}
