// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// magicBytesGZip are the magic bytes for gzip compressed files.
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// decompressGZipStream returns an io.Reader that decompresses a single gzip
// member from src. Data after the member belongs to the surrounding
// container, so multistream mode is disabled.
func decompressGZipStream(src io.Reader) (io.Reader, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return nil, err
	}
	zr.Multistream(false)
	return zr, nil
}
