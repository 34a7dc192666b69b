// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package telemetry provides [blobscan.TelemetryHook] implementations that
// submit the telemetry data of a probe to a telemetry service.
//
// [NewCollector] records probes as Prometheus metrics, [NewEventsHook]
// publishes every probe as an Amazon EventBridge (CloudWatch Events) event
// and [Chain] combines several hooks into one.
package telemetry
