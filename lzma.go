// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// magicBytesLzmaAlone are the first bytes of a classic .lzma header with the
// default properties (lc=3, lp=0, pb=2) and a power of two dictionary of at
// least 64K.
// Short pattern, so it is only part of the extended catalog.
var magicBytesLzmaAlone = [][]byte{
	{0x5D, 0x00, 0x00},
}

// decompressLzmaStream returns an io.Reader that decompresses src with the
// lzma algorithm in the legacy .lzma framing.
func decompressLzmaStream(src io.Reader) (io.Reader, error) {
	return lzma.NewReader(src)
}
