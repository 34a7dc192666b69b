// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// magicBytesSnappy is the stream identifier chunk of the snappy framing format.
// reference https://github.com/google/snappy/blob/main/framing_format.txt
var magicBytesSnappy = [][]byte{
	append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...),
}

// decompressSnappyStream returns an io.Reader that decompresses framed snappy
// data from src. Chunk checksums are verified by the decoder.
func decompressSnappyStream(src io.Reader) (io.Reader, error) {
	in := &endReader{r: src, cleanEOF: true}
	return &snappyStream{sr: snappy.NewReader(in), in: in}, nil
}

// snappyStream reports input that ends inside a chunk, or before the first
// data chunk, as truncated. The framing has no end marker, so a stream cut
// at a chunk boundary decodes to a prefix of the data.
type snappyStream struct {
	sr *snappy.Reader
	in *endReader
	n  int
}

func (s *snappyStream) Read(p []byte) (int, error) {
	n, err := s.sr.Read(p)
	s.n += n
	switch {
	case err == io.EOF && s.n == 0:
		return n, io.ErrUnexpectedEOF
	case errors.Is(err, snappy.ErrCorrupt) && s.in.eof:
		return n, fmt.Errorf("%w: %w", io.ErrUnexpectedEOF, err)
	}
	return n, err
}
