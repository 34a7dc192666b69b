// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"

	blobscan "github.com/hashicorp/go-blobscan"
)

// Chain returns a hook that calls all hooks in order. Nil hooks are skipped.
func Chain(hooks ...blobscan.TelemetryHook) blobscan.TelemetryHook {
	return func(ctx context.Context, td *blobscan.TelemetryData) {
		for _, hook := range hooks {
			if hook != nil {
				hook(ctx, td)
			}
		}
	}
}
