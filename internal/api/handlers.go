// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package api implements the HTTP surface: health probes, synchronous
// scoring, alert history and the WebSocket subscription endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flowsentry/flowsentry/internal/alerthub"
	"github.com/flowsentry/flowsentry/internal/config"
	"github.com/flowsentry/flowsentry/internal/logging"
	"github.com/flowsentry/flowsentry/internal/models"
	"github.com/flowsentry/flowsentry/internal/pipeline"
)

// Handler carries the dependencies shared by all endpoints. Immutable after
// construction and safe for concurrent use.
type Handler struct {
	engine    *pipeline.Engine
	hub       *alerthub.Hub
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(engine *pipeline.Engine, hub *alerthub.Hub, cfg *config.Config, version string) *Handler {
	return &Handler{
		engine:    engine,
		hub:       hub,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}

// Health reports overall service state. The service is "degraded" rather
// than down when no model artifact is loaded: probes stay green, scoring
// endpoints return MODEL_UNAVAILABLE.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.engine.Ready() {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:      status,
		Version:     h.version,
		ModelLoaded: h.engine.Ready(),
		BusEnabled:  h.config.Bus.Enabled,
		Subscribers: h.hub.SubscriberCount(),
		Uptime:      time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. Ready means the service can score
// traffic, so a missing model artifact reports not ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		respondError(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "classifier artifact not loaded", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates browser origins against the configured CORS
// list. Requests without an Origin header come from non-browser clients
// (collectors, scripts) and are allowed; CORS does not apply to them.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocketAlerts upgrades the connection and attaches it to the alert hub.
// `?backlog=true` requests the retained verdict history ahead of the live
// stream; either way the first frame is the hello handshake.
func (h *Handler) WebSocketAlerts(w http.ResponseWriter, r *http.Request) {
	backlog := r.URL.Query().Get("backlog") == "true"

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := alerthub.NewClient(h.hub, conn, backlog)
	client.Start()
}
