// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package classifier wraps the frozen, pre-trained model behind a single
// Classify call. Models are immutable after load and safe to call from any
// number of ingestion goroutines without locking.
package classifier

import "errors"

// ErrModelUnavailable signals that no model artifact was loaded at startup.
// Ingestion endpoints must refuse work on this error; it never affects the
// alert hub or already-open subscriptions.
var ErrModelUnavailable = errors.New("classifier model unavailable")

// Model scores a fixed-order feature vector.
//
// score is the model's probability estimate for the malicious class, or nil
// when the model only produces hard labels.
type Model interface {
	Classify(vec []float64) (malicious bool, score *float64, err error)

	// Name identifies the model kind for health reporting and logs.
	Name() string
}

// Unavailable is the Model used when no artifact could be loaded. Selecting
// it at startup keeps nil checks out of the ingestion paths.
type Unavailable struct{}

// Classify always fails with ErrModelUnavailable.
func (Unavailable) Classify([]float64) (bool, *float64, error) {
	return false, nil, ErrModelUnavailable
}

// Name implements Model.
func (Unavailable) Name() string { return "unavailable" }
