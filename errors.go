// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned if the bytes at an offset do not form a valid
	// stream for the detected codec, including failed integrity checks.
	ErrMalformed = errors.New("malformed stream")

	// ErrTruncated is returned if the stream ends before the codec framing
	// signals its end.
	ErrTruncated = errors.New("truncated stream")

	// ErrUnsupportedCodec is returned if no known codec matches the offset
	// or if the codec has no decoder.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrOutputTooLarge is returned if decoding exceeds the configured maximum
	// output size.
	ErrOutputTooLarge = errors.New("decoded output exceeds maximum size")

	// ErrOutOfRange is returned if a field does not fit into the buffer.
	ErrOutOfRange = errors.New("field out of range")

	// ErrInvalidTimestamp is returned if a timestamp field cannot be
	// represented as a calendar date.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidEncoding is returned if an ASCII field contains a byte >= 0x80.
	ErrInvalidEncoding = errors.New("invalid ascii encoding")

	// ErrInvalidArgument is returned for negative offsets, paddings and lengths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMaxInputSizeExceeded is returned if a loaded input exceeds the
	// configured maximum input size.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// DecodeErrorKind classifies why a decode attempt failed.
type DecodeErrorKind int

const (
	Malformed DecodeErrorKind = iota
	Truncated
	UnsupportedCodec
	OutputTooLarge
)

// String returns the name of the kind.
func (k DecodeErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Truncated:
		return "truncated"
	case UnsupportedCodec:
		return "unsupported-codec"
	case OutputTooLarge:
		return "output-too-large"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// sentinel returns the package level error matching the kind.
func (k DecodeErrorKind) sentinel() error {
	switch k {
	case Truncated:
		return ErrTruncated
	case UnsupportedCodec:
		return ErrUnsupportedCodec
	case OutputTooLarge:
		return ErrOutputTooLarge
	default:
		return ErrMalformed
	}
}

// DecodeError is the single error type returned by all decode operations.
// It matches the sentinel of its kind with [errors.Is], e.g.
// errors.Is(err, ErrTruncated).
type DecodeError struct {
	// Kind is the normalized failure class.
	Kind DecodeErrorKind

	// Codec is the codec that was attempted, CodecUnknown if none matched.
	Codec CodecKind

	// Offset is the buffer offset of the attempt, or -1 if the decode was not
	// anchored to a buffer offset.
	Offset int

	// Err is the underlying codec error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Codec, e.Kind.sentinel())
	if e.Offset >= 0 {
		msg = fmt.Sprintf("offset 0x%08X: %s", e.Offset, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%s)", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying codec error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error kind.
func (e *DecodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// newDecodeError creates a DecodeError not anchored to an offset.
func newDecodeError(kind DecodeErrorKind, codec CodecKind, err error) *DecodeError {
	return &DecodeError{Kind: kind, Codec: codec, Offset: -1, Err: err}
}

// FieldError is returned by the field reader. It wraps one of [ErrOutOfRange],
// [ErrInvalidTimestamp] or [ErrInvalidEncoding].
type FieldError struct {
	Spec FieldSpec
	Err  error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Spec, e.Err)
}

// Unwrap returns the wrapped bounds error.
func (e *FieldError) Unwrap() error {
	return e.Err
}
