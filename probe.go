// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-blobscan/entropy"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// SegmentReport is the outcome of a decode attempt at one candidate offset.
type SegmentReport struct {
	// Offset is the candidate offset found by the scan.
	Offset int

	// Codec is the decoded codec. For a failed attempt it is the codec of the
	// matched signature.
	Codec CodecKind

	// Label is the label of the matched signature.
	Label string

	// Container is true if the offset holds a "!CBD" tag.
	Container bool

	// Consumed, Size, CRC32, Digest and Entropy describe a successful decode.
	Consumed int
	Size     int
	CRC32    uint32
	Digest   string // BLAKE3-256, hex
	Entropy  float64

	// Data is the decoded output, only set if the config keeps data.
	Data []byte

	// Err is the decode error of a failed attempt.
	Err error
}

// OK returns true if the segment decoded successfully.
func (s SegmentReport) OK() bool {
	return s.Err == nil
}

// String returns a one line summary of the segment.
func (s SegmentReport) String() string {
	if s.Err != nil {
		return fmt.Sprintf("0x%08X %-14s FAILED %s", s.Offset, s.Label, describeError(s.Err))
	}
	return fmt.Sprintf("0x%08X %-14s %s consumed=%d size=%d crc32=%08x entropy=%.3f", s.Offset, s.Label, s.Codec, s.Consumed, s.Size, s.CRC32, s.Entropy)
}

// describeError returns the decode error kind if err is a [*DecodeError]
func describeError(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return err.Error()
}

// Report is the result of [Probe].
type Report struct {
	// InputSize is the size of the probed buffer.
	InputSize int

	// Segments holds one entry per scan match, ordered by offset.
	Segments []SegmentReport

	// Decoded and Failed count the successful and failed segments.
	Decoded int
	Failed  int
}

// Summary returns a one line summary of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d candidates, %d decoded, %d failed", len(r.Segments), r.Decoded, r.Failed)
}

// Probe scans buf with the configured catalog and scan mode and attempts to
// decode every match with [DecodeAt]. Decodes run concurrently on up to
// cfg.Workers() goroutines. A failed decode is recorded in its segment report
// and does not stop the probe. Only a cancelled context returns an error.
//
// The telemetry hook of cfg is called once the probe has finished.
func Probe(ctx context.Context, buf []byte, cfg *Config) (*Report, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{InputSize: int64(len(buf)), Codecs: map[string]int64{}}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureProbeDuration(td, time.Now())

	// scan
	scanStart := time.Now()
	matches := collect(cfg.Catalog().Matches(buf, cfg.ScanMode()))
	td.ScanDuration = time.Since(scanStart)
	td.Candidates = int64(len(matches))
	cfg.Logger().Info("scan finished", "candidates", len(matches), "mode", cfg.ScanMode(), "duration", td.ScanDuration)

	// decode all candidates
	segments := make([]SegmentReport, len(matches))
	mode := cfg.ProbeMode()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers())
	for i, m := range matches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			segments[i] = probeSegment(buf, m, mode, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cfg.Logger().Error("probe cancelled", "error", err)
		return nil, fmt.Errorf("probe cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cfg.Logger().Error("probe cancelled", "error", err)
		return nil, fmt.Errorf("probe cancelled: %w", err)
	}

	// aggregate results
	report := &Report{InputSize: len(buf), Segments: segments}
	for _, s := range segments {
		if s.Err != nil {
			report.Failed++
			handleError(cfg, td, fmt.Sprintf("decode at 0x%08X failed", s.Offset), s.Err)
			continue
		}
		report.Decoded++
		td.DecodedSegments++
		td.DecodedSize += int64(s.Size)
		td.Codecs[s.Codec.String()]++
	}
	cfg.Logger().Info("probe finished", "decoded", report.Decoded, "failed", report.Failed)
	return report, nil
}

// probeSegment decodes a single scan match
func probeSegment(buf []byte, m Match, mode Mode, cfg *Config) SegmentReport {
	seg := SegmentReport{
		Offset:    m.Offset,
		Codec:     m.Signature.Codec,
		Label:     m.Signature.Label,
		Container: m.Signature.Codec == CodecContainer,
	}

	res, err := DecodeAt(buf, m.Offset, mode, cfg)
	if err != nil {
		seg.Err = err
		return seg
	}

	digest := blake3.Sum256(res.Data)
	seg.Codec = res.Codec
	seg.Container = res.Container
	seg.Consumed = res.Consumed
	seg.Size = len(res.Data)
	seg.CRC32 = res.CRC32()
	seg.Digest = hex.EncodeToString(digest[:])
	seg.Entropy = entropy.Shannon(res.Data)
	if cfg.KeepData() {
		seg.Data = res.Data
	}
	cfg.Logger().Debug("decoded segment", "offset", m.Offset, "codec", res.Codec, "size", seg.Size)
	return seg
}

// handleError increases the error counter, sets the latest error and logs it.
func handleError(cfg *Config, td *TelemetryData, msg string, err error) error {
	td.DecodeErrors++
	td.LastDecodeError = fmt.Errorf("%s: %w", msg, err)
	cfg.Logger().Debug(msg, "error", err)
	return td.LastDecodeError
}

// captureProbeDuration sets the probe duration in the telemetry data
func captureProbeDuration(td *TelemetryData, start time.Time) {
	td.ProbeDuration = time.Since(start)
}
