// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"fmt"
)

// Default paddings used by the extract command.
const (
	DefaultPrePadding = 100
	DefaultPostLength = 500
)

// ExtractedSegment is a raw window of a buffer around an offset of interest.
type ExtractedSegment struct {
	// Offset is the requested offset of interest.
	Offset int

	// Start and End bound the window, Data equals buf[Start:End].
	Start int
	End   int

	// PrePadding is the requested number of bytes before Offset. The actual
	// number is Offset-Start after clamping.
	PrePadding int

	// Data shares memory with the source buffer and must not be modified.
	Data []byte
}

// Len returns the window length.
func (s *ExtractedSegment) Len() int {
	return s.End - s.Start
}

// ExtractWindow returns the window [offset-prePadding, offset+postLength)
// of buf, clamped to [0, len(buf)]. Offsets beyond the buffer end yield an
// empty window at the buffer end. Negative arguments return
// [ErrInvalidArgument].
//
// The returned data is a capacity limited subslice of buf, appending to it
// never writes into buf.
func ExtractWindow(buf []byte, offset, prePadding, postLength int) (*ExtractedSegment, error) {
	if offset < 0 || prePadding < 0 || postLength < 0 {
		return nil, fmt.Errorf("%w: offset %d, pre padding %d, post length %d", ErrInvalidArgument, offset, prePadding, postLength)
	}

	start := max(offset-prePadding, 0)
	end := len(buf)
	if offset < len(buf) && postLength < len(buf)-offset {
		end = offset + postLength
	}
	start = min(start, end)

	return &ExtractedSegment{
		Offset:     offset,
		Start:      start,
		End:        end,
		PrePadding: prePadding,
		Data:       buf[start:end:end],
	}, nil
}
