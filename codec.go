// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"fmt"
	"io"
	"strings"
)

// CodecKind identifies a compression algorithm and its framing.
type CodecKind int

const (
	CodecUnknown CodecKind = iota
	CodecZlib
	CodecGzip
	CodecBzip2
	CodecLzma
	CodecZip
	CodecContainer
	CodecZstd
	CodecLZ4
	CodecSnappy
	CodecBrotli
	Codec7zip
	CodecRar
	CodecLzmaAlone
)

var codecNames = map[CodecKind]string{
	CodecUnknown:   "unknown",
	CodecZlib:      "zlib",
	CodecGzip:      "gzip",
	CodecBzip2:     "bzip2",
	CodecLzma:      "lzma",
	CodecZip:       "zip",
	CodecContainer: "cbd",
	CodecZstd:      "zstd",
	CodecLZ4:       "lz4",
	CodecSnappy:    "snappy",
	CodecBrotli:    "brotli",
	Codec7zip:      "7z",
	CodecRar:       "rar",
	CodecLzmaAlone: "lzma-alone",
}

// String returns the short name of the codec, e.g. "zlib".
func (k CodecKind) String() string {
	if name, ok := codecNames[k]; ok {
		return name
	}
	return fmt.Sprintf("codec(%d)", int(k))
}

// ParseCodecKind returns the codec for a short name as returned by
// [CodecKind.String]. The comparison is case-insensitive.
func ParseCodecKind(name string) (CodecKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range codecNames {
		if n == name && kind != CodecUnknown {
			return kind, nil
		}
	}
	return CodecUnknown, fmt.Errorf("%w: %q", ErrUnsupportedCodec, name)
}

// decompressionFunc returns an io.Reader that decompresses src.
type decompressionFunc func(src io.Reader) (io.Reader, error)

// archiveFunc writes the content of all regular files of the archive in data
// to dst, in directory order.
type archiveFunc func(data []byte, dst io.Writer) error

// availableCodec binds a codec kind to its decoder. Exactly one of Stream
// and Archive is set.
type availableCodec struct {
	Stream  decompressionFunc
	Archive archiveFunc

	// End optionally returns the length of the first stream in data, or -1
	// if it cannot be located. Decoders that reject trailing data then see
	// only the stream.
	End func(data []byte) int
}

// availableCodecs is the collection of decoders per codec kind. The
// container tag has no decoder, it is resolved by the segment decoder.
var availableCodecs = map[CodecKind]availableCodec{
	CodecZlib:      {Stream: decompressZlibStream},
	CodecGzip:      {Stream: decompressGZipStream},
	CodecBzip2:     {Stream: decompressBzip2Stream, End: bzip2StreamEnd},
	CodecLzma:      {Stream: decompressXzStream},
	CodecLzmaAlone: {Stream: decompressLzmaStream},
	CodecZstd:      {Stream: decompressZstdStream},
	CodecLZ4:       {Stream: decompressLZ4Stream},
	CodecSnappy:    {Stream: decompressSnappyStream},
	CodecBrotli:    {Stream: decompressBrotliStream},
	CodecZip:       {Archive: decompressZip},
	Codec7zip:      {Archive: decompress7zip},
	CodecRar:       {Archive: decompressRar},
}

// Supported returns true if a decoder is available for the codec.
func (k CodecKind) Supported() bool {
	_, ok := availableCodecs[k]
	return ok
}
