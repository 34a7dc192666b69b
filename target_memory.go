// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// TargetMemory is an in-memory target. It is a map of file paths to
// [MemoryEntry] and safe for concurrent use.
type TargetMemory struct {
	files sync.Map // map[string]*MemoryEntry
}

// MemoryEntry is a file or directory stored in a [TargetMemory].
type MemoryEntry struct {
	Name    string
	Mode    fs.FileMode
	ModTime time.Time
	Data    []byte
}

// IsDir returns true if the entry is a directory.
func (e *MemoryEntry) IsDir() bool {
	return e.Mode.IsDir()
}

// NewTargetMemory creates a new in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// CreateFile creates a new file in memory. If the overwrite flag is set to false and the
// file already exists, an error is returned. If the content exceeds maxSize, an error is
// returned and nothing is stored.
func (m *TargetMemory) CreateFile(ctx context.Context, path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path = filepath.ToSlash(path)
	if !fs.ValidPath(path) {
		return 0, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if !overwrite {
		if _, ok := m.files.Load(path); ok {
			return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
		}
	}

	// create byte buffered writer
	var buf bytes.Buffer
	w := limitWriter(&buf, maxSize)

	// write to buffer
	n, err := io.Copy(w, src)
	if err != nil {
		return n, err
	}

	m.files.Store(path, &MemoryEntry{
		Name:    filepath.Base(path),
		Mode:    mode.Perm(),
		ModTime: time.Now(),
		Data:    buf.Bytes(),
	})
	return n, nil
}

// CreateDir creates a new directory in memory. If the directory already exists, nothing is done.
func (m *TargetMemory) CreateDir(ctx context.Context, path string, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = filepath.ToSlash(path)
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}

	// check if an entry already exists
	if _, ok := m.files.Load(path); ok {
		return nil
	}

	m.files.Store(path, &MemoryEntry{
		Name:    filepath.Base(path),
		Mode:    fs.ModeDir | mode.Perm(),
		ModTime: time.Now(),
	})
	return nil
}

// ReadFile returns the content of the file at path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	v, ok := m.files.Load(filepath.ToSlash(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	e := v.(*MemoryEntry)
	if e.IsDir() {
		return nil, fmt.Errorf("is a directory: %s", path)
	}
	return e.Data, nil
}

// Files returns the sorted paths of all files, directories excluded.
func (m *TargetMemory) Files() []string {
	var paths []string
	m.files.Range(func(key, value any) bool {
		if !value.(*MemoryEntry).IsDir() {
			paths = append(paths, key.(string))
		}
		return true
	})
	sort.Strings(paths)
	return paths
}

// Entry returns the entry at path.
func (m *TargetMemory) Entry(path string) (*MemoryEntry, bool) {
	v, ok := m.files.Load(filepath.ToSlash(path))
	if !ok {
		return nil, false
	}
	return v.(*MemoryEntry), true
}
