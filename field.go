// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// FieldType is the binary representation of a structured field.
type FieldType int

const (
	UInt32LE FieldType = iota
	Float32LE
	Float64LE
	UnixTimestamp32LE
	ASCIIString
	UInt16LE
	Int32LE
	UInt64LE
	Int64LE
	UnixTimestamp64LE
)

var fieldTypeNames = map[FieldType]string{
	UInt32LE:          "u32",
	Float32LE:         "f32",
	Float64LE:         "f64",
	UnixTimestamp32LE: "ts32",
	ASCIIString:       "ascii",
	UInt16LE:          "u16",
	Int32LE:           "i32",
	UInt64LE:          "u64",
	Int64LE:           "i64",
	UnixTimestamp64LE: "ts64",
}

// String returns the short name of the type as used in field specs, e.g. "u32".
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Size returns the encoded size of the type in bytes. ASCIIString has no
// fixed size and returns 0.
func (t FieldType) Size() int {
	switch t {
	case UInt16LE:
		return 2
	case UInt32LE, Int32LE, Float32LE, UnixTimestamp32LE:
		return 4
	case UInt64LE, Int64LE, Float64LE, UnixTimestamp64LE:
		return 8
	default:
		return 0
	}
}

// FieldSpec describes a typed field at a fixed offset of a buffer.
type FieldSpec struct {
	// Name is an optional label for reports.
	Name string

	// Offset is the position of the first field byte.
	Offset int

	// Type is the binary representation.
	Type FieldType

	// Length is the string length for ASCIIString and ignored otherwise.
	Length int
}

// String returns the spec in the form accepted by [ParseFieldSpec], prefixed
// with the name if set.
func (s FieldSpec) String() string {
	spec := fmt.Sprintf("0x%X:%s", s.Offset, s.Type)
	if s.Type == ASCIIString {
		spec = fmt.Sprintf("%s(%d)", spec, s.Length)
	}
	if s.Name != "" {
		return s.Name + "@" + spec
	}
	return spec
}

// size returns the number of bytes the field occupies
func (s FieldSpec) size() int {
	if s.Type == ASCIIString {
		return s.Length
	}
	return s.Type.Size()
}

// FieldValue is a decoded field. Value holds a uint16, uint32, uint64, int32,
// int64, float32, float64, time.Time or string depending on the spec type.
type FieldValue struct {
	Spec  FieldSpec
	Value any
}

// String returns the spec and the formatted value.
func (v FieldValue) String() string {
	switch val := v.Value.(type) {
	case time.Time:
		return fmt.Sprintf("%s = %s", v.Spec, val.Format(time.RFC3339))
	case string:
		return fmt.Sprintf("%s = %q", v.Spec, val)
	default:
		return fmt.Sprintf("%s = %v", v.Spec, val)
	}
}

var (
	// minTimestamp and maxTimestamp bound the calendar years 0001 to 9999
	minTimestamp = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// ReadField reads the field described by spec from buf. All fields are little
// endian. Timestamps are seconds since the Unix epoch and returned in UTC.
//
// A field that does not fit into buf fails with [ErrOutOfRange], an ASCII
// string with a byte >= 0x80 with [ErrInvalidEncoding] and a 64 bit timestamp
// outside of the years 0001 to 9999 with [ErrInvalidTimestamp]. Every error
// is a [*FieldError].
func ReadField(buf []byte, spec FieldSpec) (FieldValue, error) {
	size := spec.size()
	if spec.Offset < 0 || size < 0 || (spec.Type != ASCIIString && size == 0) {
		return FieldValue{}, &FieldError{Spec: spec, Err: ErrInvalidArgument}
	}
	if spec.Offset > len(buf) || size > len(buf)-spec.Offset {
		return FieldValue{}, &FieldError{Spec: spec, Err: ErrOutOfRange}
	}

	b := buf[spec.Offset : spec.Offset+size]
	le := binary.LittleEndian
	value := FieldValue{Spec: spec}

	switch spec.Type {
	case UInt16LE:
		value.Value = le.Uint16(b)
	case UInt32LE:
		value.Value = le.Uint32(b)
	case UInt64LE:
		value.Value = le.Uint64(b)
	case Int32LE:
		value.Value = int32(le.Uint32(b))
	case Int64LE:
		value.Value = int64(le.Uint64(b))
	case Float32LE:
		value.Value = math.Float32frombits(le.Uint32(b))
	case Float64LE:
		value.Value = math.Float64frombits(le.Uint64(b))
	case UnixTimestamp32LE:
		value.Value = time.Unix(int64(le.Uint32(b)), 0).UTC()
	case UnixTimestamp64LE:
		sec := int64(le.Uint64(b))
		if sec < minTimestamp || sec > maxTimestamp {
			return FieldValue{}, &FieldError{Spec: spec, Err: ErrInvalidTimestamp}
		}
		value.Value = time.Unix(sec, 0).UTC()
	case ASCIIString:
		for i, c := range b {
			if c >= 0x80 {
				return FieldValue{}, &FieldError{Spec: spec, Err: fmt.Errorf("%w: byte 0x%02X at position %d", ErrInvalidEncoding, c, i)}
			}
		}
		value.Value = string(b)
	}
	return value, nil
}

// ReadFields reads all specs from buf. It returns the successfully read
// values in spec order and the joined errors of all failed reads.
func ReadFields(buf []byte, specs []FieldSpec) ([]FieldValue, error) {
	values := make([]FieldValue, 0, len(specs))
	var errs []error
	for _, spec := range specs {
		v, err := ReadField(buf, spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values = append(values, v)
	}
	return values, errors.Join(errs...)
}
