// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ParseFieldType returns the field type for a short name as returned by
// [FieldType.String], e.g. "u32" or "ascii".
func ParseFieldType(name string) (FieldType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range fieldTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field type %q", ErrInvalidArgument, name)
}

// ParseFieldSpec parses a field spec of the form "<offset>:<type>", where the
// offset is decimal or prefixed with 0x and the type is a short type name.
// ASCII strings carry their length, e.g. "0x00:ascii(4)". An optional name is
// separated by an "@", e.g. "created@0x10:ts32".
func ParseFieldSpec(s string) (FieldSpec, error) {
	var spec FieldSpec
	if name, rest, ok := strings.Cut(s, "@"); ok {
		spec.Name = strings.TrimSpace(name)
		s = rest
	}

	offset, typ, ok := strings.Cut(s, ":")
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: field spec %q: missing type", ErrInvalidArgument, s)
	}
	off, err := strconv.ParseInt(strings.TrimSpace(offset), 0, 64)
	if err != nil || off < 0 {
		return FieldSpec{}, fmt.Errorf("%w: field spec %q: invalid offset", ErrInvalidArgument, s)
	}
	spec.Offset = int(off)

	// ascii(<length>)
	typ = strings.TrimSpace(typ)
	if name, args, ok := strings.Cut(typ, "("); ok {
		length, err := strconv.Atoi(strings.TrimSuffix(args, ")"))
		if err != nil || !strings.HasSuffix(args, ")") || length < 0 {
			return FieldSpec{}, fmt.Errorf("%w: field spec %q: invalid length", ErrInvalidArgument, s)
		}
		typ = name
		spec.Length = length
	}

	if spec.Type, err = ParseFieldType(typ); err != nil {
		return FieldSpec{}, fmt.Errorf("field spec %q: %w", s, err)
	}
	if spec.Type == ASCIIString && !strings.Contains(s, "(") {
		return FieldSpec{}, fmt.Errorf("%w: field spec %q: ascii requires a length", ErrInvalidArgument, s)
	}
	return spec, nil
}

// schemaOffset is a field offset given as a number or as a string with an
// optional 0x prefix
type schemaOffset string

// UnmarshalYAML keeps the literal scalar, 0x10 stays hexadecimal.
func (o *schemaOffset) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("offset must be a scalar, got %s", value.Tag)
	}
	*o = schemaOffset(value.Value)
	return nil
}

// UnmarshalJSON accepts numbers and strings.
func (o *schemaOffset) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = schemaOffset(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("offset must be a number or a string: %s", b)
	}
	*o = schemaOffset(n.String())
	return nil
}

// schemaFile is the layout of a field schema
type schemaFile struct {
	Fields []struct {
		Name   string       `yaml:"name" json:"name"`
		Offset schemaOffset `yaml:"offset" json:"offset"`
		Type   string       `yaml:"type" json:"type"`
		Length int          `yaml:"length" json:"length"`
	} `yaml:"fields" json:"fields"`
}

// specs validates the schema entries and converts them to field specs
func (f *schemaFile) specs() ([]FieldSpec, error) {
	specs := make([]FieldSpec, 0, len(f.Fields))
	for i, field := range f.Fields {
		off, err := strconv.ParseInt(strings.TrimSpace(string(field.Offset)), 0, 64)
		if err != nil || off < 0 {
			return nil, fmt.Errorf("%w: schema field %d (%s): invalid offset %q", ErrInvalidArgument, i, field.Name, field.Offset)
		}
		typ, err := ParseFieldType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("schema field %d (%s): %w", i, field.Name, err)
		}
		if typ == ASCIIString && field.Length <= 0 {
			return nil, fmt.Errorf("%w: schema field %d (%s): ascii requires a positive length", ErrInvalidArgument, i, field.Name)
		}
		specs = append(specs, FieldSpec{Name: field.Name, Offset: int(off), Type: typ, Length: field.Length})
	}
	return specs, nil
}

// LoadSchema reads a YAML field schema from r:
//
//	fields:
//	  - name: magic
//	    offset: 0x00
//	    type: ascii
//	    length: 4
//	  - name: created
//	    offset: 0x10
//	    type: ts32
//
// Offsets are decimal or prefixed with 0x. Unknown keys are rejected.
func LoadSchema(r io.Reader) ([]FieldSpec, error) {
	var file schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return file.specs()
}

// LoadSchemaJSON reads a field schema in JSON from r. Line comments, block
// comments and trailing commas are allowed. Offsets are numbers or strings
// with an optional 0x prefix.
func LoadSchemaJSON(r io.Reader) ([]FieldSpec, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	var file schemaFile
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return file.specs()
}
