// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// Target is a destination for decoded segments and raw windows.
type Target interface {
	// CreateFile stores src at path. An existing file is replaced only when
	// overwrite is true. At most maxSize bytes are stored unless maxSize is
	// negative. The number of bytes stored is returned, also on error.
	CreateFile(ctx context.Context, path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir makes sure the directory at path exists.
	CreateDir(ctx context.Context, path string, mode fs.FileMode) error
}

// createFile stores an artifact called name below dst on t, applying the
// file mode, overwrite and size settings of cfg. Names are slash separated
// and must stay inside dst.
func createFile(ctx context.Context, t Target, dst string, name string, src io.Reader, cfg *Config) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty artifact name", ErrInvalidArgument)
	}
	rel := filepath.Join(strings.Split(name, "/")...)
	if !filepath.IsLocal(rel) {
		return 0, fmt.Errorf("%w: artifact name escapes destination: %s", ErrInvalidArgument, name)
	}

	path := rel
	if dst != "" {
		if cfg.CreateDestination() {
			if err := t.CreateDir(ctx, dst, cfg.CustomCreateDirMode()); err != nil {
				return 0, fmt.Errorf("failed to create destination directory: %w", err)
			}
		}
		path = filepath.Join(dst, rel)
	}
	return t.CreateFile(ctx, path, src, cfg.CustomDecompressFileMode(), cfg.Overwrite(), cfg.MaxOutputSize())
}
