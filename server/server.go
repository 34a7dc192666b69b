// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package server exposes scanning, probing, decoding and field reading of
// uploaded containers over http. The request body is the container, options
// are passed as query parameters and responses are json.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	blobscan "github.com/hashicorp/go-blobscan"
	"github.com/hashicorp/go-blobscan/cache"
	"github.com/hashicorp/go-blobscan/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// defaultShutdownTimeout is the time in-flight requests get to finish
	defaultShutdownTimeout = 10 * time.Second

	// defaultReadHeaderTimeout limits the time to read request headers
	defaultReadHeaderTimeout = 10 * time.Second
)

// Server serves the blobscan http api.
type Server struct {
	cache          *cache.Cache
	configOptions  []blobscan.ConfigOption
	corsOrigins    []string
	jwtSecret      []byte
	logger         *slog.Logger
	metrics        *metrics
	probes         *telemetry.Collector
	registry       *prometheus.Registry
	telemetryHooks []blobscan.TelemetryHook
}

// Option configures a [Server].
type Option func(*Server)

// WithCache stores probe reports in c and answers repeated probes from it.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithConfigOptions are applied to the library configuration of every
// request, before the options derived from query parameters.
func WithConfigOptions(opts ...blobscan.ConfigOption) Option {
	return func(s *Server) {
		s.configOptions = append(s.configOptions, opts...)
	}
}

// WithCORS allows cross origin requests from origins.
func WithCORS(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithJWTSecret requires a HS256 signed bearer token on all /v1 routes.
func WithJWTSecret(secret []byte) Option {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// WithLogger sets the logger for requests and the library.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTelemetryHook adds a hook that is called after every probe.
func WithTelemetryHook(hook blobscan.TelemetryHook) Option {
	return func(s *Server) {
		s.telemetryHooks = append(s.telemetryHooks, hook)
	}
}

// New creates a server. Every server owns its prometheus registry.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = newMetrics(s.registry)
	s.probes = telemetry.NewCollector(s.registry)
	return s
}

// Registry returns the registry of all metrics served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the http handler with all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// unprotected
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", s.metrics.instrument(s.handleHealth))

	r.Route("/v1", func(r chi.Router) {
		if len(s.jwtSecret) > 0 {
			r.Use(s.bearerAuth)
		}
		r.Post("/scan", s.metrics.instrument(s.handleScan))
		r.Post("/probe", s.metrics.instrument(s.handleProbe))
		r.Post("/decode", s.metrics.instrument(s.handleDecode))
		r.Post("/fields", s.metrics.instrument(s.handleFields))
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// config returns the library configuration of a request
func (s *Server) config(opts ...blobscan.ConfigOption) *blobscan.Config {
	hooks := append([]blobscan.TelemetryHook{s.probes.Hook()}, s.telemetryHooks...)
	base := []blobscan.ConfigOption{
		blobscan.WithLogger(s.logger),
		blobscan.WithTelemetryHook(telemetry.Chain(hooks...)),
	}
	base = append(base, s.configOptions...)
	return blobscan.NewConfig(append(base, opts...)...)
}
