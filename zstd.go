// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

// magicBytesZstd is the magic bytes for zstandard frames.
// reference https://www.rfc-editor.org/rfc/rfc8878.html
var magicBytesZstd = [][]byte{
	{0x28, 0xb5, 0x2f, 0xfd},
}

// decompressZstdStream returns an io.Reader that decompresses src with zstandard algorithm.
// The decoder treats input that ends inside the first frame magic as an
// empty stream, so the magic is read upfront.
func decompressZstdStream(src io.Reader) (io.Reader, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(src, magic); err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(io.MultiReader(bytes.NewReader(magic), src), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
