// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// compress returns data compressed with the codec kind
func compress(t *testing.T, kind blobscan.CodecKind, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch kind {
	case blobscan.CodecZlib:
		w = zlib.NewWriter(&buf)
	case blobscan.CodecGzip:
		w = gzip.NewWriter(&buf)
	case blobscan.CodecBzip2:
		w, err = bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	case blobscan.CodecLzma:
		w, err = xz.NewWriter(&buf)
	case blobscan.CodecLzmaAlone:
		w, err = lzma.NewWriter(&buf)
	case blobscan.CodecZstd:
		w, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case blobscan.CodecLZ4:
		w = lz4.NewWriter(&buf)
	case blobscan.CodecSnappy:
		w = snappy.NewBufferedWriter(&buf)
	case blobscan.CodecBrotli:
		w = brotli.NewWriter(&buf)
	case blobscan.CodecZip:
		return compressZip(t, map[string][]byte{"data.bin": data})
	default:
		t.Fatalf("no encoder for %s", kind)
	}
	if err != nil {
		t.Fatalf("error creating %s writer: %v", kind, err)
	}

	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to %s writer: %v", kind, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing %s writer: %v", kind, err)
	}
	return buf.Bytes()
}

// compressZip returns a zip archive with one stored entry per file, in name order
func compressZip(t *testing.T, files map[string][]byte, names ...string) []byte {
	t.Helper()

	if len(names) == 0 {
		for name := range files {
			names = append(names, name)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("error creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatalf("error writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("error closing zip writer: %v", err)
	}
	return buf.Bytes()
}

// place returns a buffer of size filler bytes with every part copied to its offset
func place(size int, parts map[int][]byte) []byte {
	buf := bytes.Repeat([]byte{0xAA}, size)
	for off, p := range parts {
		copy(buf[off:], p)
	}
	return buf
}
