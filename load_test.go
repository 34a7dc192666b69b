// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobscan "github.com/hashicorp/go-blobscan"
)

func TestLoad(t *testing.T) {
	buf, err := blobscan.Load(strings.NewReader("hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), buf.Bytes())
	assert.Equal(t, 5, buf.Len())
	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close())
	assert.Nil(t, buf.Bytes())
}

func TestLoadLimit(t *testing.T) {
	cfg := blobscan.NewConfig(blobscan.WithMaxInputSize(4))
	_, err := blobscan.Load(strings.NewReader("hello"), cfg)
	assert.ErrorIs(t, err, blobscan.ErrMaxInputSizeExceeded)

	buf, err := blobscan.Load(strings.NewReader("hell"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, buf.Len())
}

func TestLoadFile(t *testing.T) {
	content := place(4096, map[int][]byte{0x100: compress(t, blobscan.CodecZlib, []byte("hello world"))})
	path := filepath.Join(t.TempDir(), "sample.gdb")
	require.NoError(t, os.WriteFile(path, content, 0600))

	buf, err := blobscan.LoadFile(path, nil)
	require.NoError(t, err)
	defer buf.Close()

	assert.True(t, bytes.Equal(content, buf.Bytes()))
	res, err := blobscan.DecodeAt(buf.Bytes(), 0x100, blobscan.ToEnd, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(res.Data))
}

func TestLoadFileEmptyAndErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.gdb")
	require.NoError(t, os.WriteFile(empty, nil, 0600))

	buf, err := blobscan.LoadFile(empty, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len())
	assert.NoError(t, buf.Close())

	_, err = blobscan.LoadFile(filepath.Join(dir, "missing.gdb"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	large := filepath.Join(dir, "large.gdb")
	require.NoError(t, os.WriteFile(large, make([]byte, 64), 0600))
	_, err = blobscan.LoadFile(large, blobscan.NewConfig(blobscan.WithMaxInputSize(63)))
	assert.ErrorIs(t, err, blobscan.ErrMaxInputSizeExceeded)
}
