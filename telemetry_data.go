// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of a probe run.
type TelemetryData struct {
	// Candidates is the number of signature matches found by the scan
	Candidates int64 `json:"candidates"`

	// DecodedSegments is the number of candidates that decoded successfully
	DecodedSegments int64 `json:"decoded_segments"`

	// DecodeErrors is the number of candidates that failed to decode
	DecodeErrors int64 `json:"decode_errors"`

	// DecodedSize is the sum of all decoded segment sizes
	DecodedSize int64 `json:"decoded_size"`

	// InputSize is the size of the scanned buffer
	InputSize int64 `json:"input_size"`

	// ProbeDuration is the time it took to scan and decode the buffer
	ProbeDuration time.Duration `json:"probe_duration"`

	// ScanDuration is the time it took to scan the buffer
	ScanDuration time.Duration `json:"scan_duration"`

	// LastDecodeError is the last error during decoding
	LastDecodeError error `json:"last_decode_error"`

	// Codecs counts the decoded segments per codec name
	Codecs map[string]int64 `json:"codecs"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastDecodeError != nil {
		lastError = m.LastDecodeError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastDecodeError string `json:"last_decode_error"`
		*Alias
	}{
		LastDecodeError: lastError,
		Alias:           (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after a probe has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// Equals returns true if the given [TelemetryData] is equal to the receiver.
// Durations and the last error are not compared.
func (td *TelemetryData) Equals(other *TelemetryData) bool {
	if td == nil && other == nil {
		return true
	}
	if td == nil || other == nil {
		return false
	}
	if len(td.Codecs) != len(other.Codecs) {
		return false
	}
	for k, v := range td.Codecs {
		if other.Codecs[k] != v {
			return false
		}
	}
	return td.Candidates == other.Candidates &&
		td.DecodedSegments == other.DecodedSegments &&
		td.DecodeErrors == other.DecodeErrors &&
		td.DecodedSize == other.DecodedSize &&
		td.InputSize == other.InputSize
}
