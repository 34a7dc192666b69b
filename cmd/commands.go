// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/cache"
	"github.com/hashicorp/go-blobscan/entropy"
	"github.com/hashicorp/go-blobscan/internal/report"
	"github.com/hashicorp/go-blobscan/telemetry"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// ScanCmd lists signature matches
type ScanCmd struct {
	Format
	File string `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	All  bool   `short:"a" help:"Report every occurrence instead of the first occurrence per signature."`
}

// Run executes the scan command
func (c *ScanCmd) Run(rc *runContext) error {
	cfg := rc.config()
	buf, err := rc.load(c.File, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	mode := blobscan.ScanFirst
	if c.All {
		mode = blobscan.ScanAll
	}
	var rows []report.Match
	for m := range cfg.Catalog().Matches(buf.Bytes(), mode) {
		rows = append(rows, report.NewMatch(m))
	}

	return c.emit(rc.out, rows, func(w io.Writer) error {
		for _, r := range rows {
			fmt.Fprintf(w, "%s  %-6s %s\n", r.Hex, r.Codec, r.Label)
		}
		fmt.Fprintf(w, "%d matches in %d bytes\n", len(rows), buf.Len())
		return nil
	})
}

// ProbeCmd decodes every scan match
type ProbeCmd struct {
	Format
	File      string   `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	All       bool     `short:"a" help:"Probe every occurrence instead of the first occurrence per signature."`
	Window    int      `short:"w" default:"-1" help:"Decode only this many bytes from every offset. (decode to end: -1)"`
	Workers   int      `short:"j" default:"0" help:"Number of concurrent decodes. (number of CPUs: 0)"`
	Out       string   `short:"o" help:"Write decoded segments to this directory."`
	S3Bucket  string   `name:"s3-bucket" help:"Upload decoded segments to this S3 bucket."`
	S3Prefix  string   `name:"s3-prefix" help:"Key prefix for uploaded segments."`
	EncryptTo []string `name:"encrypt-to" help:"Encrypt written segments to this age recipient, repeatable."`
	Cache     string   `help:"Cache probe reports in this directory and reuse them for identical inputs."`
	PromFile  string   `name:"prom-file" help:"Write probe metrics in the prometheus text format to this file."`
	EventBus  string   `name:"event-bus" help:"Publish telemetry to this EventBridge event bus."`
	Metrics   bool     `short:"M" help:"Print telemetry to log after probing."`
}

// Run executes the probe command
func (c *ProbeCmd) Run(rc *runContext) error {
	target, dst, err := c.target(rc.ctx)
	if err != nil {
		return err
	}

	hooks := []blobscan.TelemetryHook{
		func(ctx context.Context, td *blobscan.TelemetryData) {
			if c.Metrics {
				rc.logger.Info("probe finished", "telemetry", td)
			}
		},
	}
	var registry *prometheus.Registry
	if c.PromFile != "" {
		registry = prometheus.NewRegistry()
		hooks = append(hooks, telemetry.NewCollector(registry).Hook())
	}
	if c.EventBus != "" {
		hook, err := rc.eventsHook(c.EventBus)
		if err != nil {
			return err
		}
		hooks = append(hooks, hook)
	}

	opts := []blobscan.ConfigOption{
		blobscan.WithProbeWindow(c.Window),
		blobscan.WithKeepData(target != nil),
		blobscan.WithTelemetryHook(telemetry.Chain(hooks...)),
	}
	if c.All {
		opts = append(opts, blobscan.WithScanMode(blobscan.ScanAll))
	}
	if c.Workers > 0 {
		opts = append(opts, blobscan.WithWorkers(c.Workers))
	}
	cfg := rc.config(opts...)

	buf, err := rc.load(c.File, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	var store *cache.Cache
	key := cache.Key(buf.Bytes(), cfg.ScanMode().String(), cfg.ProbeMode().String(), strconv.Itoa(cfg.Catalog().Len()))
	if c.Cache != "" {
		if store, err = cache.Open(c.Cache); err != nil {
			return errors.Wrap(err, "opening cache failed")
		}
		defer store.Close()
	}

	// a cached report has no data, so it is only used if nothing is written
	if store != nil && target == nil {
		var out report.Probe
		rec, err := store.Get(key, &out)
		switch {
		case err == nil:
			out.RunID = rec.RunID.String()
			out.Cached = true
			rc.logger.Info("using cached probe report", "run_id", out.RunID, "created", rec.Created)
			return c.emit(rc.out, out, out.WriteText)
		case !errors.Is(err, cache.ErrNotFound):
			rc.logger.Warn("reading cache failed", "error", err)
		}
	}

	rep, err := blobscan.Probe(rc.ctx, buf.Bytes(), cfg)
	if err != nil {
		return errors.Wrap(err, "probe failed")
	}

	artifacts := map[int]string{}
	for _, s := range rep.Segments {
		if target == nil || !s.OK() {
			continue
		}
		res := &blobscan.DecodeResult{Codec: s.Codec, Container: s.Container, Offset: s.Offset, Data: s.Data, Consumed: s.Consumed}
		name, err := blobscan.SaveDecoded(rc.ctx, target, dst, res, cfg)
		if err != nil {
			return errors.Wrap(err, "saving segment failed")
		}
		artifacts[s.Offset] = name
	}
	out := report.NewProbe(rep, artifacts)

	if store != nil {
		id, err := store.Put(key, report.NewProbe(rep, nil))
		if err != nil {
			return errors.Wrap(err, "writing cache failed")
		}
		out.RunID = id.String()
	}
	if registry != nil {
		if err := prometheus.WriteToTextfile(c.PromFile, registry); err != nil {
			return errors.Wrap(err, "writing metrics failed")
		}
	}

	return c.emit(rc.out, out, out.WriteText)
}

// target returns the persistence target selected by the flags, nil if none
func (c *ProbeCmd) target(ctx context.Context) (blobscan.Target, string, error) {
	var target blobscan.Target
	var dst string
	switch {
	case c.S3Bucket != "":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", errors.Wrap(err, "loading aws configuration failed")
		}
		target = blobscan.NewTargetS3(s3.NewFromConfig(awsCfg), c.S3Bucket, c.S3Prefix)
	case c.Out != "":
		target, dst = blobscan.NewTargetDisk(), c.Out
	}

	if len(c.EncryptTo) == 0 {
		return target, dst, nil
	}
	if target == nil {
		return nil, "", errors.New("--encrypt-to requires --out or --s3-bucket")
	}
	recipients, err := blobscan.ParseRecipients(c.EncryptTo...)
	if err != nil {
		return nil, "", err
	}
	sealed, err := blobscan.NewTargetSealed(target, recipients...)
	if err != nil {
		return nil, "", err
	}
	return sealed, dst, nil
}

// SegmentFlags select a segment of the input
type SegmentFlags struct {
	File   string `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	Offset Offset `short:"s" required:"" help:"Offset of the segment (decimal or 0x prefixed)."`
	Length int    `short:"l" default:"-1" help:"Decode only this many bytes. (decode to end: -1)"`
}

// decode decodes the selected segment
func (f *SegmentFlags) decode(rc *runContext, cfg *blobscan.Config) (*blobscan.Buffer, *blobscan.DecodeResult, error) {
	buf, err := rc.load(f.File, cfg)
	if err != nil {
		return nil, nil, err
	}

	mode := blobscan.ToEnd
	if f.Length >= 0 {
		mode = blobscan.Bounded(f.Length)
	}
	res, err := blobscan.DecodeAt(buf.Bytes(), int(f.Offset), mode, cfg)
	if err != nil {
		buf.Close()
		return nil, nil, errors.Wrapf(err, "decode at 0x%08X (%s) failed", int(f.Offset), mode)
	}
	return buf, res, nil
}

// DecodeCmd decodes a single segment
type DecodeCmd struct {
	SegmentFlags
	Out string `short:"o" help:"Write the decoded segment to this directory."`
}

// Run executes the decode command
func (c *DecodeCmd) Run(rc *runContext) error {
	cfg := rc.config()
	buf, res, err := c.decode(rc, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	fmt.Fprintln(rc.out, report.NewDecode(res, entropy.Shannon(res.Data)).String())

	if c.Out == "" {
		return nil
	}
	name, err := blobscan.SaveDecoded(rc.ctx, blobscan.NewTargetDisk(), c.Out, res, cfg)
	if err != nil {
		return errors.Wrap(err, "saving segment failed")
	}
	fmt.Fprintf(rc.out, "written %s\n", name)
	return nil
}

// VerifyCmd verifies the CRC-32 of a decoded segment
type VerifyCmd struct {
	SegmentFlags
	CRC   string `name:"crc" xor:"expected" help:"Expected CRC-32 (decimal or 0x prefixed)."`
	CRCAt string `name:"crc-at" xor:"expected" help:"Offset of a little endian CRC-32 stored in the container (decimal or 0x prefixed)."`
}

// Run executes the verify command
func (c *VerifyCmd) Run(rc *runContext) error {
	if c.CRC == "" && c.CRCAt == "" {
		return errors.New("either --crc or --crc-at is required")
	}

	cfg := rc.config()
	buf, res, err := c.decode(rc, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	var expected uint32
	if c.CRCAt != "" {
		var at Offset
		if err := at.UnmarshalText([]byte(c.CRCAt)); err != nil {
			return err
		}
		if expected, err = blobscan.ReadCRC32LE(buf.Bytes(), int(at)); err != nil {
			return errors.Wrap(err, "reading stored crc32 failed")
		}
	} else {
		v, err := strconv.ParseUint(c.CRC, 0, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid crc32 %q", c.CRC)
		}
		expected = uint32(v)
	}

	if !blobscan.Verify(res.Data, expected) {
		fmt.Fprintf(rc.out, "0x%08X %s MISMATCH expected=%08x actual=%08x\n", res.Offset, res.Codec, expected, res.CRC32())
		return errors.Errorf("crc32 mismatch at 0x%08X", res.Offset)
	}
	fmt.Fprintf(rc.out, "0x%08X %s OK crc32=%08x\n", res.Offset, res.Codec, expected)
	return nil
}

// ExtractCmd writes raw windows around offsets
type ExtractCmd struct {
	File    string   `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	Offsets []Offset `name:"offset" short:"s" required:"" help:"Offsets of interest (decimal or 0x prefixed), repeatable."`
	Pre     int      `default:"100" help:"Bytes before every offset."`
	Post    int      `default:"500" help:"Bytes from every offset on."`
	Out     string   `short:"o" default:"." help:"Output directory."`
}

// Run executes the extract command
func (c *ExtractCmd) Run(rc *runContext) error {
	cfg := rc.config()
	buf, err := rc.load(c.File, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	target := blobscan.NewTargetDisk()
	for _, off := range c.Offsets {
		seg, err := blobscan.ExtractWindow(buf.Bytes(), int(off), c.Pre, c.Post)
		if err != nil {
			return errors.Wrapf(err, "window at 0x%08X", int(off))
		}
		name, err := blobscan.SaveWindow(rc.ctx, target, c.Out, seg, cfg)
		if err != nil {
			return errors.Wrap(err, "saving window failed")
		}
		fmt.Fprintf(rc.out, "0x%08X [0x%08X, 0x%08X) %d bytes -> %s\n", seg.Offset, seg.Start, seg.End, seg.Len(), name)
	}
	return nil
}

// FieldsCmd reads typed fields
type FieldsCmd struct {
	Format
	File   string   `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	Fields []string `name:"field" short:"F" help:"Field spec <offset>:<type>, e.g. 0x08:u32 or 0x00:ascii(4), repeatable."`
	Schema string   `type:"existingfile" help:"Schema with field specs, YAML or JSON with comments (.json, .jsonc)."`
}

// Run executes the fields command
func (c *FieldsCmd) Run(rc *runContext) error {
	specs, err := c.loadSchema()
	if err != nil {
		return err
	}
	for _, s := range c.Fields {
		spec, err := blobscan.ParseFieldSpec(s)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return errors.New("no fields given, use --field or --schema")
	}

	cfg := rc.config()
	buf, err := rc.load(c.File, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	rows := report.Fields(buf.Bytes(), specs)
	return c.emit(rc.out, rows, func(w io.Writer) error {
		for _, r := range rows {
			if r.Error != "" {
				fmt.Fprintf(w, "%s: %s\n", r.Spec, r.Error)
				continue
			}
			fmt.Fprintf(w, "%s = %v\n", r.Spec, r.Value)
		}
		return nil
	})
}

// loadSchema loads the schema file by its extension, nil if none is set
func (c *FieldsCmd) loadSchema() ([]blobscan.FieldSpec, error) {
	if c.Schema == "" {
		return nil, nil
	}
	f, err := os.Open(c.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "opening schema failed")
	}
	defer f.Close()

	var specs []blobscan.FieldSpec
	switch strings.ToLower(filepath.Ext(c.Schema)) {
	case ".json", ".jsonc":
		specs, err = blobscan.LoadSchemaJSON(f)
	default:
		specs, err = blobscan.LoadSchema(f)
	}
	return specs, errors.Wrapf(err, "schema %s", c.Schema)
}

// EntropyCmd prints the entropy of a file
type EntropyCmd struct {
	File  string `arg:"" name:"file" help:"Path or http(s) url of the container. (\"-\" for STDIN)"`
	Block int    `short:"b" default:"0" help:"Print the entropy per block of this size. (whole file: 0)"`
}

// Run executes the entropy command
func (c *EntropyCmd) Run(rc *runContext) error {
	cfg := rc.config()
	buf, err := rc.load(c.File, cfg)
	if err != nil {
		return err
	}
	defer buf.Close()

	for _, b := range entropy.Blocks(buf.Bytes(), c.Block) {
		fmt.Fprintf(rc.out, "0x%08X %8d %.4f\n", b.Offset, b.Length, b.Entropy)
	}
	fmt.Fprintf(rc.out, "Entropy: %.4f bits/byte\n", entropy.Shannon(buf.Bytes()))
	return nil
}
