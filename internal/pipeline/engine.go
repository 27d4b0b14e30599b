// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package pipeline composes the normalize → classify → publish sequence
// shared by every ingestion path.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flowsentry/flowsentry/internal/alerthub"
	"github.com/flowsentry/flowsentry/internal/classifier"
	"github.com/flowsentry/flowsentry/internal/features"
	"github.com/flowsentry/flowsentry/internal/logging"
	"github.com/flowsentry/flowsentry/internal/metrics"
	"github.com/flowsentry/flowsentry/internal/models"
)

// ErrInvalidRecord signals input that is not a well-formed record mapping.
// Surfaced to HTTP callers as a client error; the bus bridge logs and skips.
var ErrInvalidRecord = errors.New("invalid record")

// Ingestion sources, used as metric labels.
const (
	SourceHTTP = "http"
	SourceBus  = "bus"
)

// Engine runs records through the frozen schema and model and fans malicious
// verdicts out through the alert hub. Schema and model are immutable, so one
// Engine serves all ingestion goroutines concurrently.
type Engine struct {
	schema *features.Schema
	model  classifier.Model
	hub    *alerthub.Hub
}

// New builds an Engine. schema may be nil only when model is the Unavailable
// classifier (no artifact loaded).
func New(schema *features.Schema, model classifier.Model, hub *alerthub.Hub) *Engine {
	return &Engine{schema: schema, model: model, hub: hub}
}

// Ready reports whether a model artifact is loaded.
func (e *Engine) Ready() bool {
	_, unavailable := e.model.(classifier.Unavailable)
	return !unavailable
}

// Process scores one record. When publish is true and the verdict is
// malicious, the verdict is handed to the alert hub; benign records are
// scored but never broadcast. The returned verdict carries the original
// record as its feature preview.
func (e *Engine) Process(ctx context.Context, source string, rec models.Record, publish bool) (models.Verdict, error) {
	start := time.Now()

	var vec []float64
	if e.schema != nil {
		vec = e.schema.Normalize(rec)
	}

	malicious, score, err := e.model.Classify(vec)
	if err != nil {
		return models.Verdict{}, err
	}

	v := models.Verdict{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Malicious: malicious,
		Score:     score,
		Features:  rec,
	}
	metrics.RecordScored(source, malicious, time.Since(start))

	if publish && malicious {
		e.hub.Publish(v)
		logging.Ctx(ctx).Debug().
			Str("verdict_id", v.ID).
			Str("source", source).
			Msg("malicious verdict published")
	}

	return v, nil
}
