// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// magicBytesLZ4 is the little endian frame magic 0x184D2204.
// reference https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4D, 0x18},
}

// decompressLZ4Stream returns an io.Reader that decompresses an lz4 frame from src.
// A frame without its end mark is truncated.
func decompressLZ4Stream(src io.Reader) (io.Reader, error) {
	return lz4.NewReader(&endReader{r: src}), nil
}
