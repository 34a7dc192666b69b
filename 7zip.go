// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"io"

	"github.com/bodgit/sevenzip"
)

// magicBytes7zip are the magic bytes for 7zip files
var magicBytes7zip = [][]byte{
	{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
}

// decompress7zip writes the content of all regular files in the 7zip
// archive to dst.
func decompress7zip(data []byte, dst io.Writer) error {
	reader, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	return drainArchive(&sevenZipWalker{r: reader}, dst)
}

type sevenZipWalker struct {
	r  *sevenzip.Reader
	fp int
}

func (z *sevenZipWalker) Type() CodecKind {
	return Codec7zip
}

func (z *sevenZipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.r.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &sevenZipEntry{z.r.File[z.fp]}, nil
}

type sevenZipEntry struct {
	f *sevenzip.File
}

func (z *sevenZipEntry) Name() string {
	return z.f.Name
}

func (z *sevenZipEntry) Size() int64 {
	return z.f.FileInfo().Size()
}

func (z *sevenZipEntry) IsRegular() bool {
	return z.f.FileInfo().Mode().IsRegular()
}

func (z *sevenZipEntry) Open() (io.ReadCloser, error) {
	return z.f.Open()
}
