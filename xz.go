// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"io"

	"github.com/ulikunitz/xz"
)

// magicBytesXz is the magic bytes for xz files, listed as lzma in the
// signature table.
// reference https://tukaani.org/xz/xz-file-format-1.0.4.txt
var magicBytesXz = [][]byte{
	{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00},
}

// xzTrailingData is the message of the xz reader for bytes after a single
// stream.
const xzTrailingData = "xz: unexpected data after stream"

// decompressXzStream returns an io.Reader that decompresses a single xz
// stream from src. Input that ends before the stream index is truncated,
// bytes after the stream are ignored.
func decompressXzStream(src io.Reader) (io.Reader, error) {
	in := &endReader{r: src}
	xr, err := xz.ReaderConfig{SingleStream: true}.NewReader(in)
	if err != nil {
		return nil, err
	}
	return &xzStream{xr: xr, in: in}, nil
}

// xzStream ends at the end of the first xz stream. The xz reader checks for
// trailing data by reading one byte past the stream.
type xzStream struct {
	xr   *xz.Reader
	in   *endReader
	done bool
}

func (s *xzStream) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	n, err := s.xr.Read(p)
	if err != nil && err.Error() == xzTrailingData {
		s.done = true
		return n, io.EOF
	}
	return n, err
}

// Overread returns 1 if the trailing data check consumed an input byte
func (s *xzStream) Overread() int {
	if !s.done || s.in.eof {
		return 0
	}
	return 1
}
