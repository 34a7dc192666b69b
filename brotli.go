// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// brotliExcessiveInput is the message of the brotli reader for bytes after
// the end of the stream.
const brotliExcessiveInput = "brotli: excessive input"

// brotliTail is appended to the input of the brotli reader
const brotliTail = 0xFF

// decompressBrotliStream returns an io.Reader that decompresses src with brotli
// algorithm. Brotli streams carry no magic bytes, so the codec can only be
// requested explicitly.
func decompressBrotliStream(src io.Reader) (io.Reader, error) {
	in := &tailReader{r: src}
	return &brotliStream{br: brotli.NewReader(in), in: in}, nil
}

// brotliStream ends at the end of the brotli stream. The brotli reader
// returns io.EOF when its input ends, complete or not; a completed stream
// instead reports the appended tail byte as excessive input.
type brotliStream struct {
	br   *brotli.Reader
	in   *tailReader
	done bool
}

func (s *brotliStream) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	n, err := s.br.Read(p)
	switch {
	case err == nil:
		return n, nil
	case err.Error() == brotliExcessiveInput:
		s.done = true
		return n, io.EOF
	case err == io.EOF, s.in.served:
		return n, fmt.Errorf("%w: %w", io.ErrUnexpectedEOF, err)
	}
	return n, err
}

// tailReader returns the content of r followed by a single brotliTail byte
type tailReader struct {
	r      io.Reader
	served bool
}

func (t *tailReader) Read(p []byte) (int, error) {
	if t.served {
		return 0, io.EOF
	}
	n, err := t.r.Read(p)
	if err != io.EOF {
		return n, err
	}
	if n > 0 || len(p) == 0 {
		return n, nil
	}
	p[0] = brotliTail
	t.served = true
	return 1, nil
}
