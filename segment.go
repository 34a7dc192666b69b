// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// errEmptyOutput marks a stream that decoded to zero bytes, which almost
// always means the signature match was spurious.
var errEmptyOutput = errors.New("decoded output is empty")

// errWindowCutsSignature marks a bounded window that ends inside the magic
// bytes of the codec at its start.
var errWindowCutsSignature = errors.New("window ends inside the signature")

// Mode selects the input window of [DecodeAt].
type Mode struct {
	bounded bool
	length  int
}

// ToEnd decodes from the offset to the end of the buffer and lets the codec
// framing decide where the stream stops.
var ToEnd = Mode{}

// Bounded decodes only the length bytes starting at the offset. The window is
// clamped to the end of the buffer. Use it to check whether a short window is
// independently decodable without reading into the next segment.
func Bounded(length int) Mode {
	return Mode{bounded: true, length: length}
}

// IsBounded returns true for a bounded mode.
func (m Mode) IsBounded() bool {
	return m.bounded
}

// Length returns the window length of a bounded mode, -1 for ToEnd.
func (m Mode) Length() int {
	if !m.bounded {
		return -1
	}
	return m.length
}

// String returns "to-end" or "bounded(<length>)".
func (m Mode) String() string {
	if !m.bounded {
		return "to-end"
	}
	return fmt.Sprintf("bounded(%d)", m.length)
}

// window returns the end index of the input window for a decode at offset
func (m Mode) window(bufLen int, offset int) int {
	if !m.bounded || offset+m.length > bufLen {
		return bufLen
	}
	return offset + m.length
}

// DecodeAt decodes the region starting at offset of buf.
//
// The codec is taken from the longest signature of the configured catalog
// that matches exactly at offset; if none matches, the decode fails with
// [ErrUnsupportedCodec]. A "!CBD" tag at offset wraps a payload that starts
// four bytes later and whose codec is detected from its own magic bytes.
// A bounded window that ends inside the magic bytes fails with
// [ErrTruncated]. A stream that decodes to zero bytes fails with
// [ErrMalformed].
//
// An offset outside of buf or a negative bounded length returns
// [ErrInvalidArgument]. All other failures are returned as [*DecodeError].
func DecodeAt(buf []byte, offset int, mode Mode, cfg *Config) (*DecodeResult, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if offset < 0 || offset >= len(buf) {
		return nil, fmt.Errorf("%w: offset %d outside of buffer with %d bytes", ErrInvalidArgument, offset, len(buf))
	}
	if mode.bounded && mode.length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidArgument, mode.length)
	}

	end := mode.window(len(buf), offset)
	window := buf[:end]

	// signatures are matched against the whole buffer, a window that cuts
	// the magic bytes is a truncated segment
	sig, ok := cfg.Catalog().MatchAt(buf, offset)
	if !ok {
		return nil, &DecodeError{Kind: UnsupportedCodec, Codec: CodecUnknown, Offset: offset}
	}
	if end-offset < len(sig.Pattern) {
		return nil, &DecodeError{Kind: Truncated, Codec: sig.Codec, Offset: offset, Err: errWindowCutsSignature}
	}

	// resolve container tag
	start := offset
	container := false
	if sig.Codec == CodecContainer {
		container = true
		start = offset + containerHeaderLength
		sig, ok = cfg.Catalog().MatchAt(buf, start)
		if !ok || sig.Codec == CodecContainer {
			return nil, &DecodeError{Kind: UnsupportedCodec, Codec: CodecContainer, Offset: offset}
		}
		if end-start < len(sig.Pattern) {
			return nil, &DecodeError{Kind: Truncated, Codec: sig.Codec, Offset: offset, Err: errWindowCutsSignature}
		}
	}

	out, consumed, err := decodeCodec(sig.Codec, window[start:], cfg.MaxOutputSize())
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Offset = offset
		}
		return nil, err
	}
	if len(out) == 0 {
		return nil, &DecodeError{Kind: Malformed, Codec: sig.Codec, Offset: offset, Err: errEmptyOutput}
	}

	return &DecodeResult{
		Codec:     sig.Codec,
		Container: container,
		Offset:    offset,
		Data:      out,
		Consumed:  consumed + (start - offset),
	}, nil
}

// Verify returns true if the IEEE CRC-32 of decoded equals expected. Both
// values are compared as unsigned integers; read a stored checksum with an
// explicit byte order, e.g. with [ReadCRC32LE].
func Verify(decoded []byte, expected uint32) bool {
	return crc32.ChecksumIEEE(decoded) == expected
}

// ReadCRC32LE reads a little endian CRC-32 at offset of buf, as stored in gzip
// trailers and zip headers.
func ReadCRC32LE(buf []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, fmt.Errorf("%w: crc32 at offset %d", ErrOutOfRange, offset)
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}
