// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/flowsentry/flowsentry/internal/classifier"
	"github.com/flowsentry/flowsentry/internal/models"
	"github.com/flowsentry/flowsentry/internal/pipeline"
)

// maxRecordBytes bounds the request body of the scoring endpoints.
const maxRecordBytes = 1 << 20 // 1MB

// RecentAlertsRequest holds validated query parameters for /alerts/recent.
type RecentAlertsRequest struct {
	Limit int `validate:"min=1"`
}

// Predict scores a single record without publishing. The response carries
// the verdict without the feature echo; clients already hold the record.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	h.score(w, r, false)
}

// Ingest scores a record and, when the verdict is malicious, fans it out to
// all alert subscribers.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	h.score(w, r, true)
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request, publish bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_RECORD", "failed to read request body", err)
		return
	}

	rec, err := models.ParseRecord(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_RECORD", "request body must be a JSON object of feature values", err)
		return
	}

	source := pipeline.SourceHTTP
	verdict, err := h.engine.Process(r.Context(), source, rec, publish)
	switch {
	case errors.Is(err, classifier.ErrModelUnavailable):
		respondError(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "classifier artifact not loaded", nil)
		return
	case errors.Is(err, pipeline.ErrInvalidRecord):
		respondError(w, http.StatusBadRequest, "INVALID_RECORD", err.Error(), nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to score record", err)
		return
	}

	verdict.Features = nil
	respondSuccess(w, http.StatusOK, verdict)
}

// RecentAlerts returns the newest retained verdicts, oldest first. The
// default and maximum limits come from config; the ring capacity is the
// hard ceiling.
func (h *Handler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.config.API.DefaultLimit)

	req := RecentAlertsRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if limit > h.config.API.MaxLimit {
		limit = h.config.API.MaxLimit
	}

	alerts := h.hub.Recent(limit)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
