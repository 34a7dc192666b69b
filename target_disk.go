// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TargetDisk writes artifacts to the local filesystem. Files are staged in a
// temporary file next to the destination and renamed into place once fully
// written, so a partially decoded segment never appears under its final name.
type TargetDisk struct{}

// NewTargetDisk creates a new disk target
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates path and any missing parents. An existing directory is
// not an error.
func (d *TargetDisk) CreateDir(ctx context.Context, path string, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory (%w)", err)
	}
	return nil
}

// CreateFile stores src at path with the given mode. When overwrite is false
// and path exists, an error wrapping [fs.ErrExist] is returned. At most
// maxSize bytes are accepted, a negative maxSize disables the limit. The
// number of bytes copied is returned together with any error.
func (d *TargetDisk) CreateFile(ctx context.Context, path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	switch _, err := os.Lstat(path); {
	case err == nil && !overwrite:
		return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return 0, fmt.Errorf("invalid path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	staged := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(staged)
		}
	}()

	n, err := io.Copy(limitWriter(tmp, maxSize), src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(mode.Perm()); err != nil {
		return n, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(staged, path); err != nil {
		return n, fmt.Errorf("failed to create file: %w", err)
	}
	committed = true
	return n, nil
}
