// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package report holds the serialized form of scan, probe and field results
// shared by the command line, the http server and the lambda handler.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	blobscan "github.com/hashicorp/go-blobscan"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Encode writes v as json or cbor, or calls text for the text format.
func Encode(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatCBOR:
		b, err := cbor.Marshal(v)
		if err != nil {
			return fmt.Errorf("cbor encoding failed: %w", err)
		}
		_, err = w.Write(b)
		return err
	case FormatText:
		if text == nil {
			return fmt.Errorf("%w: no text form", blobscan.ErrInvalidArgument)
		}
		return text(w)
	default:
		return fmt.Errorf("%w: unknown format %q", blobscan.ErrInvalidArgument, format)
	}
}

// Match is the serialized form of a scan match
type Match struct {
	Offset int    `json:"offset" cbor:"offset"`
	Hex    string `json:"offset_hex" cbor:"offset_hex"`
	Codec  string `json:"codec" cbor:"codec"`
	Label  string `json:"label" cbor:"label"`
}

// NewMatch converts a scan match.
func NewMatch(m blobscan.Match) Match {
	return Match{
		Offset: m.Offset,
		Hex:    fmt.Sprintf("0x%08X", m.Offset),
		Codec:  m.Signature.Codec.String(),
		Label:  m.Signature.Label,
	}
}

// Matches converts all matches, never returning nil.
func Matches(matches []blobscan.Match) []Match {
	rows := make([]Match, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, NewMatch(m))
	}
	return rows
}

// Segment is the serialized form of a probed segment
type Segment struct {
	Offset    int     `json:"offset" cbor:"offset"`
	Hex       string  `json:"offset_hex" cbor:"offset_hex"`
	Codec     string  `json:"codec" cbor:"codec"`
	Label     string  `json:"label" cbor:"label"`
	Container bool    `json:"container,omitempty" cbor:"container,omitempty"`
	Consumed  int     `json:"consumed,omitempty" cbor:"consumed,omitempty"`
	Size      int     `json:"size,omitempty" cbor:"size,omitempty"`
	CRC32     string  `json:"crc32,omitempty" cbor:"crc32,omitempty"`
	Digest    string  `json:"blake3,omitempty" cbor:"blake3,omitempty"`
	Entropy   float64 `json:"entropy,omitempty" cbor:"entropy,omitempty"`
	Artifact  string  `json:"artifact,omitempty" cbor:"artifact,omitempty"`
	Error     string  `json:"error,omitempty" cbor:"error,omitempty"`
}

// NewSegment converts a segment report. artifact is the name the decoded
// data was persisted under, empty if it was not persisted.
func NewSegment(s blobscan.SegmentReport, artifact string) Segment {
	row := Segment{
		Offset:    s.Offset,
		Hex:       fmt.Sprintf("0x%08X", s.Offset),
		Codec:     s.Codec.String(),
		Label:     s.Label,
		Container: s.Container,
		Artifact:  artifact,
	}
	if s.Err != nil {
		row.Error = s.Err.Error()
		return row
	}
	row.Consumed = s.Consumed
	row.Size = s.Size
	row.CRC32 = fmt.Sprintf("%08x", s.CRC32)
	row.Digest = s.Digest
	row.Entropy = s.Entropy
	return row
}

// String returns the one line text form of the segment.
func (s Segment) String() string {
	line := fmt.Sprintf("%s %-14s ", s.Hex, s.Label)
	if s.Error != "" {
		line += "FAILED " + s.Error
	} else {
		line += fmt.Sprintf("%s consumed=%d size=%d crc32=%s entropy=%.3f", s.Codec, s.Consumed, s.Size, s.CRC32, s.Entropy)
	}
	if s.Artifact != "" {
		line += " -> " + s.Artifact
	}
	return line
}

// Probe is the serialized form of a probe report
type Probe struct {
	RunID     string    `json:"run_id,omitempty" cbor:"run_id,omitempty"`
	Cached    bool      `json:"cached,omitempty" cbor:"cached,omitempty"`
	InputSize int       `json:"input_size" cbor:"input_size"`
	Decoded   int       `json:"decoded" cbor:"decoded"`
	Failed    int       `json:"failed" cbor:"failed"`
	Segments  []Segment `json:"segments" cbor:"segments"`
}

// NewProbe converts a probe report. artifacts maps segment offsets to the
// names of persisted segments and may be nil.
func NewProbe(r *blobscan.Report, artifacts map[int]string) Probe {
	out := Probe{InputSize: r.InputSize, Decoded: r.Decoded, Failed: r.Failed, Segments: make([]Segment, 0, len(r.Segments))}
	for _, s := range r.Segments {
		out.Segments = append(out.Segments, NewSegment(s, artifacts[s.Offset]))
	}
	return out
}

// Summary returns the one line summary of the probe.
func (p Probe) Summary() string {
	return fmt.Sprintf("%d candidates, %d decoded, %d failed", len(p.Segments), p.Decoded, p.Failed)
}

// WriteText writes one line per segment followed by the summary.
func (p Probe) WriteText(w io.Writer) error {
	for _, s := range p.Segments {
		if _, err := fmt.Fprintln(w, s.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, p.Summary())
	return err
}

// Field is the serialized form of a field value
type Field struct {
	Spec  string `json:"spec" cbor:"spec"`
	Value any    `json:"value,omitempty" cbor:"value,omitempty"`
	Error string `json:"error,omitempty" cbor:"error,omitempty"`
}

// Fields reads all specs from buf. A failing field is reported in its row.
func Fields(buf []byte, specs []blobscan.FieldSpec) []Field {
	rows := make([]Field, 0, len(specs))
	for _, spec := range specs {
		v, err := blobscan.ReadField(buf, spec)
		if err != nil {
			rows = append(rows, Field{Spec: spec.String(), Error: err.Error()})
			continue
		}
		rows = append(rows, Field{Spec: spec.String(), Value: v.Value})
	}
	return rows
}

// Decode is the serialized form of a single decoded segment
type Decode struct {
	Offset   int     `json:"offset" cbor:"offset"`
	Hex      string  `json:"offset_hex" cbor:"offset_hex"`
	Codec    string  `json:"codec" cbor:"codec"`
	Consumed int     `json:"consumed" cbor:"consumed"`
	Size     int     `json:"size" cbor:"size"`
	CRC32    string  `json:"crc32" cbor:"crc32"`
	Entropy  float64 `json:"entropy" cbor:"entropy"`
}

// NewDecode converts a decode result. e is the entropy of the decoded data.
func NewDecode(res *blobscan.DecodeResult, e float64) Decode {
	return Decode{
		Offset:   res.Offset,
		Hex:      fmt.Sprintf("0x%08X", res.Offset),
		Codec:    res.Codec.String(),
		Consumed: res.Consumed,
		Size:     len(res.Data),
		CRC32:    fmt.Sprintf("%08x", res.CRC32()),
		Entropy:  e,
	}
}

// String returns the one line text form of the decode.
func (d Decode) String() string {
	return fmt.Sprintf("%s %s consumed=%d size=%d crc32=%s entropy=%.3f", d.Hex, d.Codec, d.Consumed, d.Size, d.CRC32, d.Entropy)
}
