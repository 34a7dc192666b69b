// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// magicBytesBzip2 are the magic bytes for bzip2 compressed files
// reference: https://en.wikipedia.org/wiki/Bzip2 // https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
var magicBytesBzip2 = [][]byte{
	[]byte("BZh"),
}

// bzip2EndMagic is the 48 bit end of stream marker. It is followed by the
// 32 bit stream CRC and padding to the next byte.
const bzip2EndMagic = 0x177245385090

// bzip2StreamEnd returns the length of the first bzip2 stream in data, or -1
// if data has no complete end of stream marker. The marker is not byte
// aligned.
func bzip2StreamEnd(data []byte) int {
	var acc uint64
	for i, b := range data {
		for bit := 7; bit >= 0; bit-- {
			acc = (acc<<1 | uint64(b>>bit&1)) & (1<<48 - 1)
			if acc != bzip2EndMagic {
				continue
			}
			end := (i*8 + 8 - bit + 32 + 7) / 8
			if end > len(data) {
				return -1
			}
			return end
		}
	}
	return -1
}

// decompressBzip2Stream returns an io.Reader that decompresses src with bzip2 algorithm.
// Block and stream CRCs are verified by the decoder.
func decompressBzip2Stream(src io.Reader) (io.Reader, error) {
	return bzip2.NewReader(src, nil)
}
