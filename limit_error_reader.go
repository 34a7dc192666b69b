// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import "io"

// limitErrorReader reads at most limit bytes from r. Once the limit is used
// up, a further read succeeds only if r is exhausted; otherwise it reports
// [ErrMaxInputSizeExceeded]. A negative limit reads r unbounded.
type limitErrorReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{r: r, limit: limit}
}

func (l *limitErrorReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if l.limit < 0 {
		n, err := l.r.Read(p)
		l.read += int64(n)
		return n, err
	}

	left := l.limit - l.read
	if left <= 0 {
		// any further byte means the input is larger than allowed
		var b [1]byte
		n, err := l.r.Read(b[:])
		if n > 0 {
			return 0, ErrMaxInputSizeExceeded
		}
		return 0, err
	}
	if int64(len(p)) > left {
		p = p[:left]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}

// ReadBytes reports how many bytes were consumed from the underlying reader.
func (l *limitErrorReader) ReadBytes() int {
	return int(l.read)
}
