// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	blobscan "github.com/hashicorp/go-blobscan"
)

const (
	// DefaultEventSource is the source of published probe events
	DefaultEventSource = "blobscan"

	// DefaultEventDetailType is the detail type of published probe events
	DefaultEventDetailType = "Probe Finished"
)

// EventsAPI is the subset of the CloudWatch Events client used by the events hook.
type EventsAPI interface {
	PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error)
}

// EventsOptions configure the published events.
type EventsOptions struct {
	// EventBus is the name or ARN of the event bus, empty for the default bus.
	EventBus string

	// Source and DetailType default to [DefaultEventSource] and
	// [DefaultEventDetailType].
	Source     string
	DetailType string

	// Resources are attached to every event, e.g. the ARN of the probed object.
	Resources []string

	// Logger receives publishing failures. Nil discards them.
	Logger *slog.Logger
}

// NewEventsHook returns a telemetry hook that publishes the telemetry data
// of every probe as the JSON detail of an event. Publishing failures are
// logged and never fail the probe.
func NewEventsHook(client EventsAPI, opts EventsOptions) blobscan.TelemetryHook {
	if opts.Source == "" {
		opts.Source = DefaultEventSource
	}
	if opts.DetailType == "" {
		opts.DetailType = DefaultEventDetailType
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(ctx context.Context, td *blobscan.TelemetryData) {
		if err := publish(ctx, client, opts, td); err != nil {
			opts.Logger.Warn("publishing telemetry failed", "error", err)
			return
		}
		opts.Logger.Debug("published telemetry", "source", opts.Source, "bus", opts.EventBus)
	}
}

// publish sends td as a single event
func publish(ctx context.Context, client EventsAPI, opts EventsOptions, td *blobscan.TelemetryData) error {
	entry := types.PutEventsRequestEntry{
		Source:     aws.String(opts.Source),
		DetailType: aws.String(opts.DetailType),
		Detail:     aws.String(td.String()),
		Resources:  opts.Resources,
		Time:       aws.Time(time.Now()),
	}
	if opts.EventBus != "" {
		entry.EventBusName = aws.String(opts.EventBus)
	}

	out, err := client.PutEvents(ctx, &cloudwatchevents.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	for _, e := range out.Entries {
		if e.ErrorCode != nil {
			return fmt.Errorf("put events: %s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
		}
	}
	return nil
}
