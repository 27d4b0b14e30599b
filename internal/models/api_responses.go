// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package models

import "time"

// APIResponse is the standardized envelope used by all HTTP endpoints.
//
// Status is "success" or "error"; Error is populated only on "error".
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "INVALID_RECORD", "message": "request body must be a JSON object"},
//	  "metadata": {"timestamp": "2026-08-23T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError describes a failed request with a machine-readable kind.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status      string  `json:"status"`
	Version     string  `json:"version"`
	ModelLoaded bool    `json:"model_loaded"`
	BusEnabled  bool    `json:"bus_enabled"`
	Subscribers int     `json:"subscribers"`
	Uptime      float64 `json:"uptime_seconds"`
}
