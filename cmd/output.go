// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/hashicorp/go-blobscan/internal/report"
)

// Format flag of commands with machine readable output
type Format struct {
	Format string `short:"f" enum:"text,json,cbor" default:"text" help:"Output format (text, json, cbor)."`
}

// emit writes v as json or cbor, or calls text for the text format
func (f Format) emit(w io.Writer, v any, text func(io.Writer) error) error {
	format := f.Format
	if format == "" {
		format = report.FormatText
	}
	return report.Encode(w, format, v, text)
}
