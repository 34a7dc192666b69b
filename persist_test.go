// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobscan "github.com/hashicorp/go-blobscan"
)

func TestArtifactNames(t *testing.T) {
	res := &blobscan.DecodeResult{Codec: blobscan.CodecZlib, Offset: 0x1A2B}
	assert.Equal(t, "decompressed_zlib_00001A2B.bin", blobscan.DecodedName(res))

	unanchored, err := blobscan.Decode(blobscan.CodecGzip, compress(t, blobscan.CodecGzip, []byte("hello")), nil)
	require.NoError(t, err)
	assert.Equal(t, "decompressed_gzip.bin", blobscan.DecodedName(unanchored))

	seg := &blobscan.ExtractedSegment{Offset: 0x40}
	assert.Equal(t, "segment_00000040.bin", blobscan.WindowName(seg))
}

func TestSaveDecodedToMemory(t *testing.T) {
	ctx := context.Background()
	hello := []byte("hello world")
	buf := place(0x80, map[int][]byte{0x10: compress(t, blobscan.CodecGzip, hello)})

	res, err := blobscan.DecodeAt(buf, 0x10, blobscan.ToEnd, nil)
	require.NoError(t, err)

	m := blobscan.NewTargetMemory()
	name, err := blobscan.SaveDecoded(ctx, m, "", res, nil)
	require.NoError(t, err)
	assert.Equal(t, "decompressed_gzip_00000010.bin", name)

	data, err := m.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, hello, data)

	// second save without overwrite fails
	_, err = blobscan.SaveDecoded(ctx, m, "", res, nil)
	assert.ErrorIs(t, err, fs.ErrExist)

	// with overwrite it succeeds
	_, err = blobscan.SaveDecoded(ctx, m, "", res, blobscan.NewConfig(blobscan.WithOverwrite(true)))
	assert.NoError(t, err)
}

func TestSaveWindowToDisk(t *testing.T) {
	ctx := context.Background()
	buf := []byte("0123456789abcdef")
	seg, err := blobscan.ExtractWindow(buf, 8, 2, 4)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out")
	cfg := blobscan.NewConfig(blobscan.WithCreateDestination(true))
	name, err := blobscan.SaveWindow(ctx, blobscan.NewTargetDisk(), dst, seg, cfg)
	require.NoError(t, err)
	assert.Equal(t, "segment_00000008.bin", name)

	data, err := os.ReadFile(filepath.Join(dst, name))
	require.NoError(t, err)
	assert.Equal(t, "6789ab", string(data))
}

func TestSaveWindowMissingDestination(t *testing.T) {
	seg, err := blobscan.ExtractWindow([]byte("abc"), 0, 0, 3)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "missing")
	_, err = blobscan.SaveWindow(context.Background(), blobscan.NewTargetDisk(), dst, seg, nil)
	assert.Error(t, err)
	assert.NoDirExists(t, dst)
}

func TestSaveDecodedSizeLimit(t *testing.T) {
	res := &blobscan.DecodeResult{Codec: blobscan.CodecZlib, Data: []byte("hello world")}
	cfg := blobscan.NewConfig(blobscan.WithMaxOutputSize(4))

	m := blobscan.NewTargetMemory()
	_, err := blobscan.SaveDecoded(context.Background(), m, "out", res, cfg)
	assert.Error(t, err)
	assert.Empty(t, m.Files())
}
