// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package entropy_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/hashicorp/go-blobscan/entropy"
)

func TestShannon(t *testing.T) {
	uniform := make([]byte, 256*4)
	for i := range uniform {
		uniform[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
		want float64
	}{
		{name: "empty", data: nil, want: 0},
		{name: "constant", data: bytes.Repeat([]byte{0x41}, 100), want: 0},
		{name: "two symbols", data: []byte{0, 1, 0, 1}, want: 1},
		{name: "four symbols", data: []byte{0, 1, 2, 3}, want: 2},
		{name: "all byte values", data: uniform, want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entropy.Shannon(tt.data); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Shannon() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	data := append(bytes.Repeat([]byte{0}, 8), 0, 1, 2, 3)

	blocks := entropy.Blocks(data, 8)
	if len(blocks) != 2 {
		t.Fatalf("Blocks() returned %d blocks, want 2", len(blocks))
	}
	if blocks[0].Offset != 0 || blocks[0].Length != 8 || blocks[0].Entropy != 0 {
		t.Errorf("first block = %+v", blocks[0])
	}
	if blocks[1].Offset != 8 || blocks[1].Length != 4 || math.Abs(blocks[1].Entropy-2) > 1e-9 {
		t.Errorf("last block = %+v", blocks[1])
	}

	if got := entropy.Blocks(data, 0); got != nil {
		t.Errorf("Blocks() with size 0 = %v, want nil", got)
	}
}
