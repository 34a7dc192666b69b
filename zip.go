// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// magicBytesZip are the magic bytes of a zip local file header.
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
}

// decompressZip writes the content of all regular files in the zip archive
// to dst. The central directory is located from the end of data, so the
// archive must end where data ends.
func decompressZip(data []byte, dst io.Writer) error {
	if !hasDirectoryEnd(data) {
		return fmt.Errorf("zip: no end of central directory record: %w", io.ErrUnexpectedEOF)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	return drainArchive(&zipWalker{zr: reader}, dst)
}

// directoryEndSignature starts the end of central directory record, which is
// at least directoryEndLen bytes long.
var directoryEndSignature = []byte{0x50, 0x4B, 0x05, 0x06}

const directoryEndLen = 22

// hasDirectoryEnd returns true if data holds a complete end of central
// directory record
func hasDirectoryEnd(data []byte) bool {
	i := bytes.LastIndex(data, directoryEndSignature)
	return i >= 0 && i+directoryEndLen <= len(data)
}

// zipWalker is a walker for zip files
type zipWalker struct {
	zr *zip.Reader
	fp int
}

// Type returns the codec of zip archives
func (z *zipWalker) Type() CodecKind {
	return CodecZip
}

// Next returns the next entry in the zip archive
func (z *zipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.zr.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &zipEntry{z.zr.File[z.fp]}, nil
}

// zipEntry is an entry in a zip archive
type zipEntry struct {
	zf *zip.File
}

// Name returns the name of the entry
func (z *zipEntry) Name() string {
	return z.zf.FileHeader.Name
}

// Size returns the size of the entry
func (z *zipEntry) Size() int64 {
	return int64(z.zf.FileHeader.UncompressedSize64)
}

// IsRegular returns true if the entry is a regular file
func (z *zipEntry) IsRegular() bool {
	return z.zf.FileHeader.Mode().Type() == 0
}

// Open returns a reader for the entry. The crc32 of the entry is verified
// once the reader reaches EOF.
func (z *zipEntry) Open() (io.ReadCloser, error) {
	return z.zf.Open()
}
