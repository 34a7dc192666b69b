// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package s3probe probes containers uploaded to S3. It handles S3 event
// notifications, writes every decoded segment and a json report to an output
// bucket below <prefix>/<object key>/<run id>/.
package s3probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/internal/report"
	"github.com/segmentio/ksuid"
)

// reportName is the name of the json report next to the decoded segments
const reportName = "report.json"

// ObjectAPI is the subset of the S3 client used by the handler.
type ObjectAPI interface {
	blobscan.S3PutObjectAPI
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Result describes the probe of one uploaded object.
type Result struct {
	Bucket string       `json:"bucket"`
	Key    string       `json:"key"`
	Output string       `json:"output"`
	Report report.Probe `json:"report"`
}

// Handler probes the objects of S3 events.
type Handler struct {
	client        ObjectAPI
	bucket        string
	prefix        string
	configOptions []blobscan.ConfigOption
	logger        *slog.Logger
}

// Option configures a [Handler].
type Option func(*Handler)

// WithConfigOptions are applied to the library configuration of every probe.
func WithConfigOptions(opts ...blobscan.ConfigOption) Option {
	return func(h *Handler) {
		h.configOptions = append(h.configOptions, opts...)
	}
}

// WithLogger sets the logger of the handler and the library.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates a handler writing its results to bucket below prefix.
func New(client ObjectAPI, bucket, prefix string, opts ...Option) *Handler {
	h := &Handler{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle probes every object of the event. A failing object does not stop
// the others, all failures are returned joined.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) ([]Result, error) {
	var results []Result
	var errs []error
	for _, record := range event.Records {
		key := record.S3.Object.URLDecodedKey
		if key == "" {
			key = record.S3.Object.Key
		}
		res, err := h.probeObject(ctx, record.S3.Bucket.Name, key)
		if err != nil {
			h.logger.Error("probing object failed", "bucket", record.S3.Bucket.Name, "key", key, "error", err)
			errs = append(errs, fmt.Errorf("s3://%s/%s: %w", record.S3.Bucket.Name, key, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// probeObject downloads, probes and persists a single object
func (h *Handler) probeObject(ctx context.Context, bucket, key string) (Result, error) {
	base := []blobscan.ConfigOption{
		blobscan.WithLogger(h.logger),
		blobscan.WithKeepData(true),
	}
	cfg := blobscan.NewConfig(append(base, h.configOptions...)...)

	obj, err := h.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return Result{}, fmt.Errorf("download failed: %w", err)
	}
	defer obj.Body.Close()
	if size := aws.ToInt64(obj.ContentLength); size > 0 {
		if err := cfg.CheckInputSize(size); err != nil {
			return Result{}, err
		}
	}

	buf, err := blobscan.Load(obj.Body, cfg)
	if err != nil {
		return Result{}, err
	}
	defer buf.Close()

	rep, err := blobscan.Probe(ctx, buf.Bytes(), cfg)
	if err != nil {
		return Result{}, err
	}

	runID := ksuid.New().String()
	dst := path.Join(key, runID)
	target := blobscan.NewTargetS3(h.client, h.bucket, h.prefix)

	artifacts := map[int]string{}
	for _, s := range rep.Segments {
		if !s.OK() {
			continue
		}
		res := &blobscan.DecodeResult{Codec: s.Codec, Container: s.Container, Offset: s.Offset, Data: s.Data, Consumed: s.Consumed}
		name, err := blobscan.SaveDecoded(ctx, target, dst, res, cfg)
		if err != nil {
			return Result{}, err
		}
		artifacts[s.Offset] = name
	}

	out := report.NewProbe(rep, artifacts)
	out.RunID = runID
	data, err := json.Marshal(out)
	if err != nil {
		return Result{}, fmt.Errorf("encoding report failed: %w", err)
	}
	if _, err := target.CreateFile(ctx, path.Join(dst, reportName), bytes.NewReader(data), 0644, false, -1); err != nil {
		return Result{}, fmt.Errorf("saving report failed: %w", err)
	}

	h.logger.Info("probed object", "bucket", bucket, "key", key, "run_id", runID, "summary", out.Summary())
	return Result{
		Bucket: bucket,
		Key:    key,
		Output: fmt.Sprintf("s3://%s/%s", h.bucket, path.Join(h.prefix, dst)),
		Report: out,
	}, nil
}
