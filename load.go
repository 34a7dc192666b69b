// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Buffer is an immutable input buffer. It is either backed by memory or by
// a read-only memory mapping of a file. The bytes must not be modified and
// must not be used after Close.
type Buffer struct {
	data    []byte
	release func() error
}

// Bytes returns the content of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the size of the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Close releases the buffer. Closing a buffer twice is a no-op.
func (b *Buffer) Close() error {
	release := b.release
	b.release = nil
	b.data = nil
	if release == nil {
		return nil
	}
	return release()
}

// Load reads r into a memory backed buffer. If more than cfg.MaxInputSize()
// bytes are available, [ErrMaxInputSizeExceeded] is returned.
func Load(r io.Reader, cfg *Config) (*Buffer, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	var buf bytes.Buffer
	ler := newLimitErrorReader(r, cfg.MaxInputSize())
	if _, err := io.Copy(&buf, ler); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	cfg.Logger().Debug("loaded input", "size", ler.ReadBytes())
	return &Buffer{data: buf.Bytes()}, nil
}

// LoadFile loads the file at path. On unix systems the file is mapped
// read-only into memory, elsewhere it is read completely. If the file is
// larger than cfg.MaxInputSize(), [ErrMaxInputSizeExceeded] is returned.
func LoadFile(path string, cfg *Config) (*Buffer, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if !stat.Mode().IsRegular() {
		cfg.Logger().Debug("input is not a regular file, reading stream", "path", path)
		return Load(f, cfg)
	}
	if err := cfg.CheckInputSize(stat.Size()); err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	if stat.Size() == 0 {
		return &Buffer{}, nil
	}

	buf, err := mapFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to map input: %w", err)
	}
	cfg.Logger().Debug("loaded input", "path", path, "size", buf.Len())
	return buf, nil
}
