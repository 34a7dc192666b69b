// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"fmt"
	"io"
)

// archiveWalker is an interface that represents a file walker in an archive
type archiveWalker interface {
	Type() CodecKind
	Next() (archiveEntry, error)
}

// archiveEntry is an interface that represents a file in an archive
type archiveEntry interface {
	IsRegular() bool
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
}

// drainArchive copies the content of every regular file in w to dst, in the
// order the walker returns them. Directories and special files are skipped.
func drainArchive(w archiveWalker, dst io.Writer) error {
	for {
		ae, err := w.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("%s: cannot read next entry: %w", w.Type(), err)
		case ae == nil:
			continue
		}

		if !ae.IsRegular() {
			continue
		}

		if err := copyEntry(ae, dst); err != nil {
			return fmt.Errorf("%s: entry %q: %w", w.Type(), ae.Name(), err)
		}
	}
}

// copyEntry opens a single archive entry and copies it to dst
func copyEntry(ae archiveEntry, dst io.Writer) error {
	rc, err := ae.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(dst, rc)
	return err
}
