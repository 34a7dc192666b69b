// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// DecodeResult is the outcome of a successful decode. Data is complete and
// passed the integrity checks of the codec.
type DecodeResult struct {
	// Codec is the codec that produced Data. For a "!CBD" region this is the
	// codec of the wrapped payload.
	Codec CodecKind

	// Container is true if the region was wrapped in a "!CBD" tag.
	Container bool

	// Offset is the buffer offset the decode started at, -1 if the decode was
	// not anchored to a buffer.
	Offset int

	// Data is the decoded content.
	Data []byte

	// Consumed is the number of input bytes read by the decoder, including a
	// container tag. It is exact for zlib, gzip, bzip2 and xz; other stream
	// decoders may have read ahead, archives always consume their whole input.
	Consumed int
}

// CRC32 returns the IEEE CRC-32 of the decoded data.
func (r *DecodeResult) CRC32() uint32 {
	return crc32.ChecksumIEEE(r.Data)
}

// Decode decodes data with the given codec. Data must start with the codec
// framing; trailing bytes after the end of the stream are ignored.
//
// All failures are returned as [*DecodeError]. An empty but valid stream
// decodes to an empty result. If cfg is nil, the default configuration is
// used.
func Decode(kind CodecKind, data []byte, cfg *Config) (*DecodeResult, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	out, consumed, err := decodeCodec(kind, data, cfg.MaxOutputSize())
	if err != nil {
		return nil, err
	}
	return &DecodeResult{Codec: kind, Offset: -1, Data: out, Consumed: consumed}, nil
}

// decodeCodec runs the decoder of kind over data and limits the output to
// maxOutput bytes (-1 disables the limit). Decoder panics are reported as
// malformed input.
func decodeCodec(kind CodecKind, data []byte, maxOutput int64) (out []byte, consumed int, err error) {
	ac, ok := availableCodecs[kind]
	if !ok {
		return nil, 0, newDecodeError(UnsupportedCodec, kind, nil)
	}
	if len(data) == 0 {
		return nil, 0, newDecodeError(Truncated, kind, io.ErrUnexpectedEOF)
	}

	defer func() {
		if r := recover(); r != nil {
			out, consumed = nil, 0
			err = newDecodeError(Malformed, kind, fmt.Errorf("decoder panic: %v", r))
		}
	}()

	// archives need random access and consume the whole input
	if ac.Archive != nil {
		var buf bytes.Buffer
		lw := limitWriter(&buf, maxOutput)
		if err := ac.Archive(data, lw); err != nil {
			return nil, 0, classifyError(kind, lw, err)
		}
		return buf.Bytes(), len(data), nil
	}

	// decode up to the located end of the stream first, a false end marker
	// falls back to the whole input
	if ac.End != nil {
		if end := ac.End(data); end > 0 && end < len(data) {
			out, _, err := decodeStream(kind, ac.Stream, data[:end], maxOutput)
			switch {
			case err == nil:
				return out, end, nil
			case errors.Is(err, ErrOutputTooLarge):
				return nil, 0, err
			}
		}
	}
	return decodeStream(kind, ac.Stream, data, maxOutput)
}

// decodeStream copies the output of a stream decoder over data into memory
func decodeStream(kind CodecKind, newStream decompressionFunc, data []byte, maxOutput int64) ([]byte, int, error) {
	var buf bytes.Buffer
	lw := limitWriter(&buf, maxOutput)

	// bytes.Reader is an io.ByteReader, flate based decoders do not read ahead
	src := bytes.NewReader(data)
	stream, err := newStream(src)
	if err != nil {
		return nil, 0, classifyError(kind, lw, err)
	}
	defer func() {
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
	}()

	if _, err := io.Copy(lw, stream); err != nil {
		return nil, 0, classifyError(kind, lw, err)
	}

	consumed := len(data) - src.Len()
	if o, ok := stream.(overreader); ok {
		consumed -= o.Overread()
	}
	return buf.Bytes(), consumed, nil
}

// overreader is implemented by stream decoders that read past the end of
// their stream to look for trailing data.
type overreader interface {
	// Overread returns the number of input bytes read after the stream end.
	Overread() int
}

// endReader tracks whether a decoder read past the end of its input. Unless
// cleanEOF is set the end of input is reported as io.ErrUnexpectedEOF, for
// framings that mark their own end.
type endReader struct {
	r        io.Reader
	eof      bool
	cleanEOF bool
}

func (e *endReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != io.EOF {
		return n, err
	}
	e.eof = true
	switch {
	case n > 0:
		return n, nil
	case e.cleanEOF:
		return 0, io.EOF
	default:
		return 0, io.ErrUnexpectedEOF
	}
}

// ReadByte implements io.ByteReader for lzma based decoders.
func (e *endReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(e, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// classifyError normalizes a codec specific error into a DecodeError
func classifyError(kind CodecKind, lw *limitErrorWriter, err error) *DecodeError {
	switch {
	case lw.Exceeded():
		return newDecodeError(OutputTooLarge, kind, err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return newDecodeError(Truncated, kind, err)
	default:
		return newDecodeError(Malformed, kind, err)
	}
}
