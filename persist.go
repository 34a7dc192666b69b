// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"context"
	"fmt"
)

// DecodedName returns the artifact name of a decoded segment,
// decompressed_<codec>_<OFFSET>.bin with the offset as 8 hex digits. A result
// that is not anchored to a buffer offset is named decompressed_<codec>.bin.
func DecodedName(res *DecodeResult) string {
	if res.Offset < 0 {
		return fmt.Sprintf("decompressed_%s.bin", res.Codec)
	}
	return fmt.Sprintf("decompressed_%s_%08X.bin", res.Codec, res.Offset)
}

// WindowName returns the artifact name of a raw window,
// segment_<OFFSET>.bin with the offset as 8 hex digits.
func WindowName(seg *ExtractedSegment) string {
	return fmt.Sprintf("segment_%08X.bin", seg.Offset)
}

// SaveDecoded writes the decoded bytes of res to t below dst and returns the
// artifact name.
func SaveDecoded(ctx context.Context, t Target, dst string, res *DecodeResult, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	name := DecodedName(res)
	n, err := createFile(ctx, t, dst, name, bytes.NewReader(res.Data), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	cfg.Logger().Debug("saved decoded segment", "name", name, "offset", res.Offset, "size", n)
	return name, nil
}

// SaveWindow writes the raw bytes of seg to t below dst and returns the
// artifact name.
func SaveWindow(ctx context.Context, t Target, dst string, seg *ExtractedSegment, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	name := WindowName(seg)
	n, err := createFile(ctx, t, dst, name, bytes.NewReader(seg.Data), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	cfg.Logger().Debug("saved window", "name", name, "start", seg.Start, "end", seg.End, "size", n)
	return name, nil
}
