// Copyright IBM Corp. 2023, 2025

package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/internal/s3probe"
	"github.com/hashicorp/go-blobscan/telemetry"
)

// main starts the lambda handler that probes objects of S3 event notifications.
//
// Environment:
//
//	BLOBSCAN_OUTPUT_BUCKET   bucket for decoded segments and reports (required)
//	BLOBSCAN_OUTPUT_PREFIX   key prefix in the output bucket
//	BLOBSCAN_EVENT_BUS       publish telemetry to this event bus
//	BLOBSCAN_EXTENDED        use the extended signature catalog
//	BLOBSCAN_MAX_INPUT_SIZE  maximum object size in bytes
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	bucket := os.Getenv("BLOBSCAN_OUTPUT_BUCKET")
	if bucket == "" {
		logger.Error("BLOBSCAN_OUTPUT_BUCKET is not set")
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("loading aws configuration failed", "error", err)
		os.Exit(1)
	}

	var opts []blobscan.ConfigOption
	if extended, _ := strconv.ParseBool(os.Getenv("BLOBSCAN_EXTENDED")); extended {
		opts = append(opts, blobscan.WithCatalog(blobscan.ExtendedCatalog()))
	}
	if v := os.Getenv("BLOBSCAN_MAX_INPUT_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Error("invalid BLOBSCAN_MAX_INPUT_SIZE", "value", v)
			os.Exit(1)
		}
		opts = append(opts, blobscan.WithMaxInputSize(size))
	}
	if bus := os.Getenv("BLOBSCAN_EVENT_BUS"); bus != "" {
		opts = append(opts, blobscan.WithTelemetryHook(telemetry.NewEventsHook(
			cloudwatchevents.NewFromConfig(awsCfg),
			telemetry.EventsOptions{EventBus: bus, Logger: logger},
		)))
	}

	h := s3probe.New(s3.NewFromConfig(awsCfg), bucket, os.Getenv("BLOBSCAN_OUTPUT_PREFIX"),
		s3probe.WithLogger(logger),
		s3probe.WithConfigOptions(opts...),
	)
	lambda.Start(h.Handle)
}
