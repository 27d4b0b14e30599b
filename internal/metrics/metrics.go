// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline, the alert hub and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	RecordsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_records_scored_total",
			Help: "Total records run through the classification pipeline",
		},
		[]string{"source", "verdict"}, // source: http, bus; verdict: malicious, benign
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowsentry_classify_duration_seconds",
			Help:    "Duration of normalize+classify for one record",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// Alert hub metrics
	HubSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowsentry_hub_subscribers",
			Help: "Currently connected alert subscribers",
		},
	)

	HubPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowsentry_hub_verdicts_published_total",
			Help: "Verdicts accepted by the alert hub for fan-out",
		},
	)

	HubDroppedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowsentry_hub_messages_dropped_total",
			Help: "Messages dropped from slow subscribers' queues (oldest-first)",
		},
	)

	// Bus bridge metrics
	BusMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_bus_messages_total",
			Help: "Messages consumed from the ingestion topic",
		},
		[]string{"result"}, // processed, malformed, failed
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowsentry_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowsentry_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowsentry_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordScored tracks one pipeline pass.
func RecordScored(source string, malicious bool, duration time.Duration) {
	verdict := "benign"
	if malicious {
		verdict = "malicious"
	}
	RecordsScored.WithLabelValues(source, verdict).Inc()
	ClassifyDuration.Observe(duration.Seconds())
}

// RecordAPIRequest tracks one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
