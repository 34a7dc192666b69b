// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"filippo.io/age"
)

// TargetSealed encrypts every file with age before it is handed to the
// wrapped target. Directories are passed through unchanged. The size limit
// applies to the plaintext.
type TargetSealed struct {
	target     Target
	recipients []age.Recipient
}

// NewTargetSealed wraps t and encrypts files to all recipients.
func NewTargetSealed(t Target, recipients ...age.Recipient) (*TargetSealed, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidArgument)
	}
	return &TargetSealed{target: t, recipients: recipients}, nil
}

// ParseRecipients parses age X25519 public keys (age1...).
func ParseRecipients(keys ...string) ([]age.Recipient, error) {
	recipients := make([]age.Recipient, 0, len(keys))
	for _, key := range keys {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}

// CreateFile encrypts src and creates the ciphertext at path in the wrapped
// target. The plaintext size is returned.
func (s *TargetSealed) CreateFile(ctx context.Context, path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	var ciphertext bytes.Buffer
	w, err := age.Encrypt(&ciphertext, s.recipients...)
	if err != nil {
		return 0, fmt.Errorf("creating age encryptor: %w", err)
	}

	n, err := io.Copy(limitWriter(w, maxSize), src)
	if err != nil {
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("finalizing age encryption: %w", err)
	}

	if _, err := s.target.CreateFile(ctx, path, &ciphertext, mode, overwrite, -1); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateDir creates the directory in the wrapped target.
func (s *TargetSealed) CreateDir(ctx context.Context, path string, mode fs.FileMode) error {
	return s.target.CreateDir(ctx, path, mode)
}
