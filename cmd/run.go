// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/telemetry"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Globals are the flags shared by all commands
type Globals struct {
	Extended      bool             `short:"e" help:"Use the extended signature catalog (zstd, lz4, snappy, 7z, rar, lzma-alone)."`
	MaxInputSize  int64            `optional:"" default:"1073741824" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
	MaxOutputSize int64            `optional:"" default:"1073741824" help:"Maximum decoded size of a single segment (in bytes). (disable check: -1)"`
	Overwrite     bool             `short:"O" help:"Overwrite existing output files."`
	Verbose       bool             `short:"v" optional:"" help:"Verbose logging."`
	Version       kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// CLI are the cli parameters for the blobscan binary
type CLI struct {
	Globals

	Scan    ScanCmd    `cmd:"" help:"List signature matches in a file."`
	Probe   ProbeCmd   `cmd:"" help:"Scan a file and attempt to decode every match."`
	Decode  DecodeCmd  `cmd:"" help:"Decode the segment at an offset."`
	Verify  VerifyCmd  `cmd:"" help:"Decode the segment at an offset and verify its CRC-32."`
	Extract ExtractCmd `cmd:"" help:"Write raw windows around offsets of interest."`
	Fields  FieldsCmd  `cmd:"" help:"Read typed fields at fixed offsets."`
	Entropy EntropyCmd `cmd:"" help:"Print the Shannon entropy of a file."`
	Serve   ServeCmd   `cmd:"" help:"Serve the http api."`
}

// runContext is passed to the Run method of every command
type runContext struct {
	ctx     context.Context
	logger  *slog.Logger
	out     io.Writer
	globals *Globals
}

// configOptions returns the library options for the global flags
func (rc *runContext) configOptions() []blobscan.ConfigOption {
	catalog := blobscan.DefaultCatalog()
	if rc.globals.Extended {
		catalog = blobscan.ExtendedCatalog()
	}
	return []blobscan.ConfigOption{
		blobscan.WithCatalog(catalog),
		blobscan.WithLogger(rc.logger),
		blobscan.WithMaxInputSize(rc.globals.MaxInputSize),
		blobscan.WithMaxOutputSize(rc.globals.MaxOutputSize),
		blobscan.WithOverwrite(rc.globals.Overwrite),
		blobscan.WithCreateDestination(true),
	}
}

// config returns the library configuration for the global flags and opts
func (rc *runContext) config(opts ...blobscan.ConfigOption) *blobscan.Config {
	return blobscan.NewConfig(append(rc.configOptions(), opts...)...)
}

// eventsHook returns a telemetry hook publishing to an EventBridge bus
func (rc *runContext) eventsHook(bus string) (blobscan.TelemetryHook, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(rc.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws configuration failed")
	}
	return telemetry.NewEventsHook(cloudwatchevents.NewFromConfig(awsCfg), telemetry.EventsOptions{
		EventBus: bus,
		Logger:   rc.logger,
	}), nil
}

// load loads the input file or url with the configured input size limit
func (rc *runContext) load(path string, cfg *blobscan.Config) (*blobscan.Buffer, error) {
	if blobscan.IsURL(path) {
		buf, err := blobscan.LoadURL(rc.ctx, path, cfg)
		return buf, errors.Wrapf(err, "fetching %s failed", path)
	}
	if path == "-" {
		buf, err := blobscan.Load(os.Stdin, cfg)
		return buf, errors.Wrap(err, "reading stdin failed")
	}
	buf, err := blobscan.LoadFile(path, cfg)
	return buf, errors.Wrapf(err, "loading %s failed", path)
}

// Offset is a buffer offset given in decimal or with a 0x prefix
type Offset int

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (o *Offset) UnmarshalText(text []byte) error {
	v, err := strconv.ParseInt(string(text), 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", text)
	}
	if v < 0 {
		return fmt.Errorf("negative offset %q", text)
	}
	*o = Offset(v)
	return nil
}

// Run the entrypoint into go-blobscan as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("blobscan"),
		kong.Description("Locate, decode and inspect compressed regions of opaque binary containers."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelWarn
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := newLogger(os.Stderr, logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := &runContext{
		ctx:     ctx,
		logger:  logger,
		out:     os.Stdout,
		globals: &cli.Globals,
	}
	kctx.FatalIfErrorf(kctx.Run(rc))
}

// newLogger returns a text logger for terminals and a json logger otherwise
func newLogger(f *os.File, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(f.Fd())) {
		handler = slog.NewTextHandler(f, options)
	} else {
		handler = slog.NewJSONHandler(f, options)
	}
	return slog.New(handler)
}
