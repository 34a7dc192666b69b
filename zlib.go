// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// magicBytesZlib are the zlib headers for the default and best compression
// levels with a 32K window.
// reference https://www.ietf.org/rfc/rfc1950.txt
var magicBytesZlib = [][]byte{
	{0x78, 0x9c},
	{0x78, 0xda},
}

// magicBytesZlibLowLevels are the zlib headers for the fastest and low
// compression levels. They are only part of the extended catalog.
var magicBytesZlibLowLevels = [][]byte{
	{0x78, 0x01},
	{0x78, 0x5e},
}

// decompressZlibStream returns an io.Reader that decompresses src with zlib algorithm.
// The adler32 trailer is verified when the stream is read to its end.
func decompressZlibStream(src io.Reader) (io.Reader, error) {
	return zlib.NewReader(src)
}
