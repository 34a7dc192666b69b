// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package entropy measures the Shannon entropy of byte data. Compressed and
// encrypted regions are close to 8 bits per byte, structured headers and
// padding are far below.
package entropy

import "math"

// Shannon returns the entropy of data in bits per byte, between 0 and 8.
// The entropy of empty data is 0.
func Shannon(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	n := float64(len(data))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// Block is the entropy of a fixed size block of a buffer.
type Block struct {
	Offset  int
	Length  int
	Entropy float64
}

// Blocks splits data into consecutive blocks of size bytes and returns the
// entropy of each. The last block may be shorter. A size below 1 returns nil.
func Blocks(data []byte, size int) []Block {
	if size < 1 {
		return nil
	}
	blocks := make([]Block, 0, (len(data)+size-1)/size)
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		blocks = append(blocks, Block{Offset: off, Length: end - off, Entropy: Shannon(data[off:end])})
	}
	return blocks
}
