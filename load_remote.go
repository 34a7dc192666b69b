// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
)

var (
	httpClient     *resty.Client
	httpClientOnce sync.Once
)

func getHTTPClient() *resty.Client {
	httpClientOnce.Do(func() {
		httpClient = resty.New()
		httpClient.SetHeader("User-Agent", "go-blobscan")

		if trace, _ := strconv.ParseBool(os.Getenv("BLOBSCAN_HTTP_TRACE")); trace {
			httpClient.SetDebug(true)
		}
	})

	return httpClient
}

// IsURL returns true if input is an http or https url.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// LoadURL downloads url into a memory backed buffer. A response that
// announces or delivers more than cfg.MaxInputSize() bytes fails with
// [ErrMaxInputSizeExceeded].
func LoadURL(ctx context.Context, url string, cfg *Config) (*Buffer, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	req := getHTTPClient().NewRequest()
	req.SetContext(ctx)
	req.SetDoNotParseResponse(true)

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch input: unexpected response code: %s", resp.Status())
	}
	if size := resp.RawResponse.ContentLength; size > 0 {
		if err := cfg.CheckInputSize(size); err != nil {
			return nil, fmt.Errorf("input %s: %w", url, err)
		}
	}

	cfg.Logger().Debug("fetching input", "url", url, "status", resp.StatusCode())
	return Load(body, cfg)
}
