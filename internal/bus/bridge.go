// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package bus consumes traffic records from a NATS topic and feeds them into
// the classification pipeline, fire-and-forget. The bridge's failure domain
// is isolated: a broker outage or malformed message never reaches the HTTP
// ingestion path or the alert hub's other producers.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/flowsentry/flowsentry/internal/logging"
	"github.com/flowsentry/flowsentry/internal/metrics"
	"github.com/flowsentry/flowsentry/internal/models"
	"github.com/flowsentry/flowsentry/internal/pipeline"
)

// Config describes the optional bus connection. When Enabled is false the
// bridge is simply not started.
type Config struct {
	Enabled       bool
	URL           string
	Topic         string
	ReconnectWait time.Duration
}

// DefaultConfig returns bridge defaults; the bridge stays disabled until a
// broker URL is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		URL:           nats.DefaultURL,
		Topic:         "flowsentry.traffic",
		ReconnectWait: 2 * time.Second,
	}
}

// pendingLimit bounds locally buffered, not-yet-processed messages.
const pendingLimit = 256

// Bridge subscribes to the configured topic and runs each message through
// the pipeline. It implements suture.Service.
type Bridge struct {
	cfg    Config
	engine *pipeline.Engine
}

// New creates a Bridge.
func New(cfg Config, engine *pipeline.Engine) *Bridge {
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	return &Bridge{cfg: cfg, engine: engine}
}

// Serve connects, subscribes and consumes until the context is canceled.
// Broker reconnection is delegated to the nats client (unlimited retries
// with ReconnectWait backoff); a lost connection is logged, never surfaced.
func (b *Bridge) Serve(ctx context.Context) error {
	nc, err := nats.Connect(b.cfg.URL,
		nats.Name("flowsentry-bridge"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(b.cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("bus connection lost, reconnecting")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("bus reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to bus %s: %w", b.cfg.URL, err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, pendingLimit)
	sub, err := nc.ChanSubscribe(b.cfg.Topic, msgs)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.cfg.Topic, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	logging.Info().Str("url", b.cfg.URL).Str("topic", b.cfg.Topic).Msg("bus bridge started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "bus-bridge").Msg("bus bridge stopped")
			return ctx.Err()
		case m := <-msgs:
			b.handle(ctx, m.Data)
		}
	}
}

// handle scores one raw message. Malformed or unscorable messages are
// counted and skipped; nothing here may terminate the receive loop.
func (b *Bridge) handle(ctx context.Context, data []byte) {
	rec, err := models.ParseRecord(data)
	if err != nil {
		metrics.BusMessages.WithLabelValues("malformed").Inc()
		logging.Warn().Err(err).Msg("skipping malformed bus message")
		return
	}

	if _, err := b.engine.Process(ctx, pipeline.SourceBus, rec, true); err != nil {
		metrics.BusMessages.WithLabelValues("failed").Inc()
		logging.Warn().Err(err).Msg("bus record not scored")
		return
	}
	metrics.BusMessages.WithLabelValues("processed").Inc()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bridge) String() string { return "bus-bridge" }
