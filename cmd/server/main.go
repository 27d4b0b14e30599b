// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package main is the entry point for the FlowSentry server.
//
// FlowSentry scores network-traffic feature records against a pre-trained
// classifier and pushes malicious verdicts to WebSocket subscribers in real
// time. Records arrive over HTTP (POST /predict, POST /ingest) and,
// optionally, over a NATS topic.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml, env)
//  2. Logging: zerolog, configured from logging.*
//  3. Model artifact: frozen schema + classifier loaded from model.path
//  4. Alert hub: in-memory fan-out with bounded per-subscriber queues
//  5. Supervisor tree: hub run loop, optional bus bridge, HTTP server
//
// A missing model artifact is not fatal: the service starts degraded and
// scoring endpoints return MODEL_UNAVAILABLE until an artifact is supplied
// and the process restarted.
//
// # Configuration
//
// Common environment variables (full list in internal/config):
//
//	export HTTP_PORT=8000
//	export MODEL_PATH=/data/model.json
//	export NATS_ENABLED=true
//	export NATS_URL=nats://broker:4222
//	export NATS_TOPIC=flowsentry.traffic
//	export LOG_LEVEL=info
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP listener stops
// accepting connections and drains in-flight requests (10s timeout), the
// bus bridge unsubscribes, and the hub closes every subscriber queue.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowsentry/flowsentry/internal/alerthub"
	"github.com/flowsentry/flowsentry/internal/api"
	"github.com/flowsentry/flowsentry/internal/artifact"
	"github.com/flowsentry/flowsentry/internal/bus"
	"github.com/flowsentry/flowsentry/internal/classifier"
	"github.com/flowsentry/flowsentry/internal/config"
	"github.com/flowsentry/flowsentry/internal/features"
	"github.com/flowsentry/flowsentry/internal/logging"
	"github.com/flowsentry/flowsentry/internal/pipeline"
	"github.com/flowsentry/flowsentry/internal/supervisor"
	"github.com/flowsentry/flowsentry/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting FlowSentry")

	schema, model := loadModel(cfg.Model.Path)

	hub := alerthub.New(alerthub.Config{
		BufferCapacity: cfg.Hub.BufferCapacity,
		QueueDepth:     cfg.Hub.QueueDepth,
		BroadcastDepth: cfg.Hub.BroadcastDepth,
	})

	engine := pipeline.New(schema, model, hub)

	handler := api.NewHandler(engine, hub, cfg, version)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: router.Setup(),
		// No global read/write deadlines: WebSocket subscriptions are
		// long-lived. Per-connection deadlines live in the WS pumps.
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewHubService(hub))
	if cfg.Bus.Enabled {
		tree.AddMessagingService(bus.New(bus.Config{
			Enabled:       cfg.Bus.Enabled,
			URL:           cfg.Bus.URL,
			Topic:         cfg.Bus.Topic,
			ReconnectWait: cfg.Bus.ReconnectWait,
		}, engine))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", cfg.ListenAddr()).
		Bool("bus_enabled", cfg.Bus.Enabled).
		Msg("Supervisor tree starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		report, reportErr := tree.UnstoppedServiceReport()
		if reportErr == nil && len(report) > 0 {
			for _, svc := range report {
				logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
			}
		}
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}

	logging.Info().Msg("FlowSentry stopped")
}

// loadModel reads the classifier artifact. Failure to load is downgraded to
// a warning so the service can come up for health checks and operators can
// fix the artifact path without a crash loop.
func loadModel(path string) (*features.Schema, classifier.Model) {
	if path == "" {
		logging.Warn().Msg("No model path configured, scoring disabled")
		return nil, classifier.Unavailable{}
	}

	schema, model, err := artifact.Load(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to load model artifact, scoring disabled")
		return nil, classifier.Unavailable{}
	}

	logging.Info().
		Str("path", path).
		Str("model", model.Name()).
		Int("dimensions", schema.Dimensions()).
		Msg("Model artifact loaded")
	return schema, model
}
