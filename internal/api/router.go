// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowsentry/flowsentry/internal/config"
	"github.com/flowsentry/flowsentry/internal/middleware"
)

// healthRateLimit allows frequent probe traffic while still bounding abuse.
const healthRateLimit = 1000

// Router wires handlers and middleware into the HTTP mux.
type Router struct {
	handler *Handler
	config  *config.Config
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, config: cfg}
}

// Setup builds the chi mux. Middleware order: request ID first so every log
// line is traceable, then IP extraction, panic recovery and CORS; rate
// limits and metrics are applied per route group.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.config.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, router.config.Security.RateLimitWindow))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Group(func(r chi.Router) {
		if !router.config.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(router.config.Security.RateLimitReqs, router.config.Security.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Post("/predict", router.handler.Predict)
		r.Post("/ingest", router.handler.Ingest)
		r.Get("/alerts/recent", router.handler.RecentAlerts)
		r.Get("/ws/alerts", router.handler.WebSocketAlerts)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
