// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import "io"

// limitErrorWriter forwards at most limit bytes to w. A write crossing the
// limit is truncated and fails with io.ErrShortWrite. A negative limit
// disables the check.
type limitErrorWriter struct {
	w        io.Writer
	limit    int64
	written  int64
	exceeded bool
}

// limitWriter wraps w so that no more than maxSize bytes reach it.
func limitWriter(w io.Writer, maxSize int64) *limitErrorWriter {
	return &limitErrorWriter{w: w, limit: maxSize}
}

func (l *limitErrorWriter) Write(p []byte) (int, error) {
	short := false
	if l.limit >= 0 {
		if room := l.limit - l.written; int64(len(p)) > room {
			p, short = p[:room], true
			l.exceeded = true
		}
	}

	var (
		n   int
		err error
	)
	if len(p) > 0 {
		n, err = l.w.Write(p)
		l.written += int64(n)
	}
	if err == nil && short {
		err = io.ErrShortWrite
	}
	return n, err
}

// Exceeded reports whether any write was cut short by the limit.
func (l *limitErrorWriter) Exceeded() bool {
	return l.exceeded
}
