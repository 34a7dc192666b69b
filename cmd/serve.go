// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"

	"github.com/hashicorp/go-blobscan/cache"
	"github.com/hashicorp/go-blobscan/server"
	"github.com/pkg/errors"
)

// ServeCmd serves the http api
type ServeCmd struct {
	Addr          string   `short:"l" default:":8080" help:"Listen address."`
	Cache         string   `help:"Cache probe reports in this directory."`
	JWTSecretFile string   `name:"jwt-secret-file" type:"existingfile" help:"Require HS256 bearer tokens signed with the secret in this file."`
	CORSOrigins   []string `name:"cors-origin" help:"Allow cross origin requests from this origin, repeatable."`
	EventBus      string   `name:"event-bus" help:"Publish telemetry of every probe to this EventBridge event bus."`
}

// Run executes the serve command until the process is interrupted
func (c *ServeCmd) Run(rc *runContext) error {
	opts := []server.Option{
		server.WithLogger(rc.logger),
		server.WithConfigOptions(rc.configOptions()...),
	}

	if c.JWTSecretFile != "" {
		secret, err := os.ReadFile(c.JWTSecretFile)
		if err != nil {
			return errors.Wrap(err, "reading jwt secret failed")
		}
		secret = bytes.TrimSpace(secret)
		if len(secret) == 0 {
			return errors.Errorf("jwt secret file %s is empty", c.JWTSecretFile)
		}
		opts = append(opts, server.WithJWTSecret(secret))
	}
	if len(c.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(c.CORSOrigins...))
	}
	if c.Cache != "" {
		store, err := cache.Open(c.Cache)
		if err != nil {
			return errors.Wrap(err, "opening cache failed")
		}
		defer store.Close()
		opts = append(opts, server.WithCache(store))
	}
	if c.EventBus != "" {
		hook, err := rc.eventsHook(c.EventBus)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithTelemetryHook(hook))
	}

	return server.New(opts...).ListenAndServe(rc.ctx, c.Addr)
}
