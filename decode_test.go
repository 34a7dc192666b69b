// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan_test

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"testing"

	blobscan "github.com/hashicorp/go-blobscan"
)

// streamCodecs are all codecs with an encoder available in tests
var streamCodecs = []blobscan.CodecKind{
	blobscan.CodecZlib,
	blobscan.CodecGzip,
	blobscan.CodecBzip2,
	blobscan.CodecLzma,
	blobscan.CodecLzmaAlone,
	blobscan.CodecZstd,
	blobscan.CodecLZ4,
	blobscan.CodecSnappy,
	blobscan.CodecBrotli,
	blobscan.CodecZip,
}

func TestDecodeRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"text":   []byte("hello world"),
		"repeat": bytes.Repeat([]byte("geophysical line data "), 1000),
		"binary": func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i * 7)
			}
			return b
		}(),
	}

	for _, kind := range streamCodecs {
		for name, data := range inputs {
			t.Run(fmt.Sprintf("%s/%s", kind, name), func(t *testing.T) {
				res, err := blobscan.Decode(kind, compress(t, kind, data), nil)
				if err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if !bytes.Equal(res.Data, data) {
					t.Errorf("Decode() returned %d bytes, want %d", len(res.Data), len(data))
				}
				if res.Codec != kind {
					t.Errorf("Decode() codec = %s, want %s", res.Codec, kind)
				}
				if res.Offset != -1 {
					t.Errorf("Decode() offset = %d, want -1", res.Offset)
				}
				if res.CRC32() != crc32.ChecksumIEEE(data) {
					t.Errorf("CRC32() = %08x, want %08x", res.CRC32(), crc32.ChecksumIEEE(data))
				}
			})
		}
	}
}

func TestDecodeEmptyStream(t *testing.T) {
	for _, kind := range []blobscan.CodecKind{blobscan.CodecZlib, blobscan.CodecGzip} {
		t.Run(kind.String(), func(t *testing.T) {
			res, err := blobscan.Decode(kind, compress(t, kind, nil), nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(res.Data) != 0 {
				t.Errorf("Decode() returned %d bytes, want 0", len(res.Data))
			}
		})
	}
}

func TestDecodeConsumed(t *testing.T) {
	data := []byte("hello world")
	for _, kind := range []blobscan.CodecKind{blobscan.CodecZlib, blobscan.CodecGzip} {
		t.Run(kind.String(), func(t *testing.T) {
			stream := compress(t, kind, data)
			trailing := append(bytes.Clone(stream), bytes.Repeat([]byte{0xAA}, 64)...)

			res, err := blobscan.Decode(kind, trailing, nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if res.Consumed != len(stream) {
				t.Errorf("Decode() consumed = %d, want %d", res.Consumed, len(stream))
			}
		})
	}
}

// decodeOrTruncated fails t unless err reports a truncated stream or the
// decoded data is the complete original
func decodeOrTruncated(t *testing.T, res *blobscan.DecodeResult, err error, want []byte, cut int) {
	t.Helper()

	if err != nil {
		if !errors.Is(err, blobscan.ErrTruncated) {
			t.Errorf("cut at %d: error = %v, want %v", cut, err, blobscan.ErrTruncated)
		}
		return
	}
	if !bytes.Equal(res.Data, want) {
		t.Errorf("cut at %d: decoded %d bytes without error, want %d or a truncation error", cut, len(res.Data), len(want))
	}
}

func TestDecodeTruncationSweep(t *testing.T) {
	// short enough for a single snappy chunk and a single zstd frame
	data := bytes.Repeat([]byte("geophysical line data "), 200)

	for _, kind := range streamCodecs {
		t.Run(kind.String(), func(t *testing.T) {
			stream := compress(t, kind, data)
			for cut := 0; cut < len(stream); cut++ {
				res, err := blobscan.Decode(kind, stream[:cut], nil)
				decodeOrTruncated(t, res, err, data, cut)
			}
		})
	}
}

func TestDecodeTrailingData(t *testing.T) {
	data := []byte("hello world")
	trailing := bytes.Repeat([]byte{0xAA}, 64)

	tests := []struct {
		kind  blobscan.CodecKind
		exact bool
	}{
		{kind: blobscan.CodecZlib, exact: true},
		{kind: blobscan.CodecGzip, exact: true},
		{kind: blobscan.CodecBzip2, exact: true},
		{kind: blobscan.CodecLzma, exact: true},
		{kind: blobscan.CodecZip},
		{kind: blobscan.CodecBrotli},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			stream := compress(t, tt.kind, data)
			input := append(bytes.Clone(stream), trailing...)

			res, err := blobscan.Decode(tt.kind, input, nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(res.Data, data) {
				t.Errorf("Decode() = %q, want %q", res.Data, data)
			}
			switch {
			case tt.exact && res.Consumed != len(stream):
				t.Errorf("Decode() consumed = %d, want %d", res.Consumed, len(stream))
			case tt.kind == blobscan.CodecZip && res.Consumed != len(input):
				t.Errorf("Decode() consumed = %d, want the whole input of %d", res.Consumed, len(input))
			}
		})
	}
}

func TestDecodeBzip2FirstStreamOnly(t *testing.T) {
	first := compress(t, blobscan.CodecBzip2, []byte("first"))
	second := compress(t, blobscan.CodecBzip2, []byte("second"))

	res, err := blobscan.Decode(blobscan.CodecBzip2, append(bytes.Clone(first), second...), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(res.Data) != "first" {
		t.Errorf("Decode() = %q, want %q", res.Data, "first")
	}
	if res.Consumed != len(first) {
		t.Errorf("Decode() consumed = %d, want %d", res.Consumed, len(first))
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, kind := range streamCodecs {
		_, err := blobscan.Decode(kind, nil, nil)
		if !errors.Is(err, blobscan.ErrTruncated) {
			t.Errorf("Decode(%s, nil) error = %v, want %v", kind, err, blobscan.ErrTruncated)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	zlibStream := compress(t, blobscan.CodecZlib, bytes.Repeat([]byte("abc"), 100))
	corrupt := bytes.Clone(zlibStream)
	corrupt[len(corrupt)-1] ^= 0xFF // adler32 trailer

	// central directory header signature
	badZip := compressZip(t, map[string][]byte{"a.txt": []byte("abc")})
	badZip[bytes.Index(badZip, []byte("PK\x01\x02"))+3] = 0xFF

	tests := []struct {
		name     string
		kind     blobscan.CodecKind
		data     []byte
		cfg      *blobscan.Config
		wantKind blobscan.DecodeErrorKind
		wantErr  error
	}{
		{
			name:     "truncated zlib",
			kind:     blobscan.CodecZlib,
			data:     zlibStream[:len(zlibStream)/2],
			wantKind: blobscan.Truncated,
			wantErr:  blobscan.ErrTruncated,
		},
		{
			name:     "zlib checksum mismatch",
			kind:     blobscan.CodecZlib,
			data:     corrupt,
			wantKind: blobscan.Malformed,
			wantErr:  blobscan.ErrMalformed,
		},
		{
			name:     "invalid zlib header",
			kind:     blobscan.CodecZlib,
			data:     []byte{0x78, 0x00, 0x01, 0x02},
			wantKind: blobscan.Malformed,
			wantErr:  blobscan.ErrMalformed,
		},
		{
			name:     "truncated gzip",
			kind:     blobscan.CodecGzip,
			data:     compress(t, blobscan.CodecGzip, []byte("hello world"))[:12],
			wantKind: blobscan.Truncated,
			wantErr:  blobscan.ErrTruncated,
		},
		{
			name:     "output limit",
			kind:     blobscan.CodecZlib,
			data:     zlibStream,
			cfg:      blobscan.NewConfig(blobscan.WithMaxOutputSize(10)),
			wantKind: blobscan.OutputTooLarge,
			wantErr:  blobscan.ErrOutputTooLarge,
		},
		{
			name:     "container has no decoder",
			kind:     blobscan.CodecContainer,
			data:     []byte("!CBD"),
			wantKind: blobscan.UnsupportedCodec,
			wantErr:  blobscan.ErrUnsupportedCodec,
		},
		{
			name:     "unknown codec",
			kind:     blobscan.CodecUnknown,
			data:     zlibStream,
			wantKind: blobscan.UnsupportedCodec,
			wantErr:  blobscan.ErrUnsupportedCodec,
		},
		{
			name:     "corrupt zip directory",
			kind:     blobscan.CodecZip,
			data:     badZip,
			wantKind: blobscan.Malformed,
			wantErr:  blobscan.ErrMalformed,
		},
		{
			name:     "zip without directory end",
			kind:     blobscan.CodecZip,
			data:     []byte("PK\x03\x04 garbage"),
			wantKind: blobscan.Truncated,
			wantErr:  blobscan.ErrTruncated,
		},
		{
			name:     "xz header only",
			kind:     blobscan.CodecLzma,
			data:     compress(t, blobscan.CodecLzma, []byte("hello world"))[:12],
			wantKind: blobscan.Truncated,
			wantErr:  blobscan.ErrTruncated,
		},
		{
			name:     "brotli cut before the last block",
			kind:     blobscan.CodecBrotli,
			data:     compress(t, blobscan.CodecBrotli, bytes.Repeat([]byte("abc"), 100))[:4],
			wantKind: blobscan.Truncated,
			wantErr:  blobscan.ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := blobscan.Decode(tt.kind, tt.data, tt.cfg)
			if err == nil {
				t.Fatalf("Decode() expected error, got %d bytes", len(res.Data))
			}
			if res != nil {
				t.Errorf("Decode() returned a result along with an error")
			}
			var de *blobscan.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error %T is not a *DecodeError", err)
			}
			if de.Kind != tt.wantKind {
				t.Errorf("Decode() error kind = %s, want %s (%v)", de.Kind, tt.wantKind, err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeErrorString(t *testing.T) {
	err := &blobscan.DecodeError{Kind: blobscan.Truncated, Codec: blobscan.CodecZlib, Offset: 0x50}
	want := "offset 0x00000050: zlib: truncated stream"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Is(err, blobscan.ErrMalformed) {
		t.Errorf("truncated error matches ErrMalformed")
	}
}

func TestDecodeArchiveGarbage(t *testing.T) {
	tests := []struct {
		kind blobscan.CodecKind
		data []byte
	}{
		{blobscan.Codec7zip, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C, 0x00}},
		{blobscan.CodecRar, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			_, err := blobscan.Decode(tt.kind, tt.data, nil)
			var de *blobscan.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error = %v, want a *DecodeError", err)
			}
			if de.Codec != tt.kind {
				t.Errorf("Decode() error codec = %s, want %s", de.Codec, tt.kind)
			}
		})
	}
}

func TestDecodeZipConcatenatesEntries(t *testing.T) {
	archive := compressZip(t, map[string][]byte{
		"a.txt": []byte("first "),
		"b.txt": []byte("second"),
	}, "a.txt", "b.txt")

	res, err := blobscan.Decode(blobscan.CodecZip, archive, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(res.Data) != "first second" {
		t.Errorf("Decode() = %q, want %q", res.Data, "first second")
	}
	if res.Consumed != len(archive) {
		t.Errorf("Decode() consumed = %d, want %d", res.Consumed, len(archive))
	}
}

func TestParseCodecKind(t *testing.T) {
	for _, kind := range append(streamCodecs, blobscan.CodecContainer, blobscan.Codec7zip, blobscan.CodecRar) {
		got, err := blobscan.ParseCodecKind(kind.String())
		if err != nil || got != kind {
			t.Errorf("ParseCodecKind(%q) = %s, %v", kind.String(), got, err)
		}
	}
	if _, err := blobscan.ParseCodecKind("unknown"); !errors.Is(err, blobscan.ErrUnsupportedCodec) {
		t.Errorf("ParseCodecKind(unknown) error = %v", err)
	}
	if got, _ := blobscan.ParseCodecKind(" GZIP "); got != blobscan.CodecGzip {
		t.Errorf("ParseCodecKind is case sensitive")
	}
}
