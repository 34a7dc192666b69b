// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"

	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus metrics of finished probes
type Collector struct {
	probes         prometheus.Counter
	candidates     prometheus.Counter
	decoded        *prometheus.CounterVec
	decodeErrors   prometheus.Counter
	decodedBytes   prometheus.Counter
	inputBytes     prometheus.Counter
	probeDuration  prometheus.Histogram
	scanDuration   prometheus.Histogram
	lastInputBytes prometheus.Gauge
}

// NewCollector creates all probe metrics and registers them with reg. If reg
// is nil, the metrics are registered with the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		probes: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobscan_probes_total",
			Help: "Total number of finished probes",
		}),
		candidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobscan_candidates_total",
			Help: "Total number of signature matches found by probes",
		}),
		decoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobscan_decoded_segments_total",
				Help: "Total number of decoded segments",
			},
			[]string{"codec"},
		),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobscan_decode_errors_total",
			Help: "Total number of candidates that failed to decode",
		}),
		decodedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobscan_decoded_bytes_total",
			Help: "Total size of all decoded segments in bytes",
		}),
		inputBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "blobscan_input_bytes_total",
			Help: "Total size of all probed inputs in bytes",
		}),
		probeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blobscan_probe_duration_seconds",
			Help:    "Probe duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blobscan_scan_duration_seconds",
			Help:    "Signature scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		lastInputBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blobscan_last_input_bytes",
			Help: "Size of the last probed input in bytes",
		}),
	}
}

// Record adds the telemetry data of a finished probe to the metrics.
func (c *Collector) Record(td *blobscan.TelemetryData) {
	c.probes.Inc()
	c.candidates.Add(float64(td.Candidates))
	c.decodeErrors.Add(float64(td.DecodeErrors))
	c.decodedBytes.Add(float64(td.DecodedSize))
	c.inputBytes.Add(float64(td.InputSize))
	c.probeDuration.Observe(td.ProbeDuration.Seconds())
	c.scanDuration.Observe(td.ScanDuration.Seconds())
	c.lastInputBytes.Set(float64(td.InputSize))
	for codec, n := range td.Codecs {
		c.decoded.WithLabelValues(codec).Add(float64(n))
	}
}

// Hook returns a telemetry hook that records every probe.
func (c *Collector) Hook() blobscan.TelemetryHook {
	return func(_ context.Context, td *blobscan.TelemetryData) {
		c.Record(td)
	}
}
