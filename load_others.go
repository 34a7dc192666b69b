// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package blobscan

import (
	"io"
	"os"
)

// mapFile reads size bytes of f into memory.
func mapFile(f *os.File, size int64) (*Buffer, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return &Buffer{data: data}, nil
}
