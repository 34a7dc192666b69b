// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"runtime"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all options for scanning, decoding and
// persisting segments of a container. The options can be adjusted using the
// option pattern style.
//
// The default configuration limits the decoded output of every segment to
// prevent decompression bombs from exhausting memory.
type Config struct {
	// catalog is the signature table used to scan and to infer codecs
	catalog *Catalog

	// create destination directory if it does not exist
	createDestination bool

	// customCreateDirMode is the file mode for created directories (respecting umask)
	customCreateDirMode fs.FileMode

	// customDecompressFileMode is the exact file mode for persisted segments
	customDecompressFileMode fs.FileMode

	// keepData keeps decoded bytes in probe reports
	keepData bool

	// logger stream for scanning and decoding
	logger logger

	// maxInputSize is the maximum size of a loaded input.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// maxOutputSize is the maximum decoded size of a single segment.
	// Set value to -1 to disable the check.
	maxOutputSize int64

	// Define if files should be overwritten in the destination
	overwrite bool

	// probeWindow is the bounded window length used by Probe, -1 decodes to the end
	probeWindow int

	// scanMode selects first or all occurrences during Probe
	scanMode ScanMode

	// telemetryHook is a function to consume telemetry data after a finished probe
	// Important: do not adjust this value after probing started
	telemetryHook TelemetryHook

	// workers is the number of concurrent decodes during Probe
	workers int
}

// Catalog returns the signature catalog.
func (c *Config) Catalog() *Catalog {
	if c.catalog == nil {
		return DefaultCatalog()
	}
	return c.catalog
}

// CheckInputSize checks if size exceeds the configured maximum. If the maximum
// is exceeded, a [ErrMaxInputSizeExceeded] error is returned.
func (c *Config) CheckInputSize(size int64) error {

	// check if disabled
	if c.MaxInputSize() == -1 {
		return nil
	}

	// check value
	if size > c.MaxInputSize() {
		return ErrMaxInputSizeExceeded
	}
	return nil
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories.
// (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomDecompressFileMode returns the file mode for a persisted segment.
// The disk target applies it as is, without umask.
func (c *Config) CustomDecompressFileMode() fs.FileMode {
	return c.customDecompressFileMode
}

// KeepData returns true if probe reports keep the decoded bytes.
func (c *Config) KeepData() bool {
	return c.keepData
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxInputSize returns the maximum size of a loaded input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// MaxOutputSize returns the maximum decoded size of a single segment.
func (c *Config) MaxOutputSize() int64 {
	return c.maxOutputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// ProbeMode returns the decode mode used by [Probe]: [ToEnd] if the probe
// window is negative, [Bounded] otherwise.
func (c *Config) ProbeMode() Mode {
	if c.probeWindow < 0 {
		return ToEnd
	}
	return Bounded(c.probeWindow)
}

// ProbeWindow returns the bounded window length used by [Probe], -1 for ToEnd.
func (c *Config) ProbeWindow() int {
	return c.probeWindow
}

// ScanMode returns the scan mode used by [Probe].
func (c *Config) ScanMode() ScanMode {
	return c.scanMode
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

// Workers returns the number of concurrent decodes during [Probe].
func (c *Config) Workers() int {
	return c.workers
}

const (
	defaultCreateDestination        = false         // don't create destination directory
	defaultCustomCreateDirMode      = 0750          // default directory permissions rwxr-x---
	defaultCustomDecompressFileMode = 0640          // default file permissions rw-r-----
	defaultKeepData                 = false         // reports carry metadata only
	defaultMaxInputSize             = 1 << (10 * 3) // 1 Gb
	defaultMaxOutputSize            = 1 << (10 * 3) // 1 Gb per segment
	defaultOverwrite                = false         // don't overwrite existing files
	defaultProbeWindow              = -1            // decode to the end of the buffer
	defaultScanMode                 = ScanFirst     // first occurrence per signature
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		catalog:                  DefaultCatalog(),
		createDestination:        defaultCreateDestination,
		customCreateDirMode:      defaultCustomCreateDirMode,
		customDecompressFileMode: defaultCustomDecompressFileMode,
		keepData:                 defaultKeepData,
		logger:                   defaultLogger,
		maxInputSize:             defaultMaxInputSize,
		maxOutputSize:            defaultMaxOutputSize,
		overwrite:                defaultOverwrite,
		probeWindow:              defaultProbeWindow,
		scanMode:                 defaultScanMode,
		telemetryHook:            defaultTelemetryHook,
		workers:                  runtime.GOMAXPROCS(0),
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithCatalog options pattern function to set the signature catalog. A nil
// catalog resets to [DefaultCatalog].
func WithCatalog(catalog *Catalog) ConfigOption {
	return func(c *Config) {
		if catalog == nil {
			catalog = DefaultCatalog()
		}
		c.catalog = catalog
	}
}

// WithCreateDestination options pattern function to create
// destination directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomDecompressFileMode options pattern function to set the file mode for a
// persisted segment.
func WithCustomDecompressFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customDecompressFileMode = mode
	}
}

// WithKeepData options pattern function to keep decoded bytes in probe reports.
func WithKeepData(keep bool) ConfigOption {
	return func(c *Config) {
		c.keepData = keep
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxInputSize options pattern function to set the maximum size of a
// loaded input. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithMaxOutputSize options pattern function to set the maximum decoded size
// of a single segment. (-1 to disable check)
func WithMaxOutputSize(maxOutputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxOutputSize = maxOutputSize
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithProbeWindow options pattern function to set the bounded window length
// used by [Probe]. (-1 to decode to the end of the buffer)
func WithProbeWindow(length int) ConfigOption {
	return func(c *Config) {
		if length < 0 {
			length = -1
		}
		c.probeWindow = length
	}
}

// WithScanMode options pattern function to set the scan mode used by [Probe].
func WithScanMode(mode ScanMode) ConfigOption {
	return func(c *Config) {
		c.scanMode = mode
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after probing.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

// WithWorkers options pattern function to set the number of concurrent
// decodes during [Probe]. Values below 1 are raised to 1.
func WithWorkers(workers int) ConfigOption {
	return func(c *Config) {
		if workers < 1 {
			workers = 1
		}
		c.workers = workers
	}
}
