// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package models

import "time"

// Verdict is the classification result for one record, eligible for
// broadcast. Score is nil when the loaded model has no probability output;
// the JSON field is then an explicit null, matching the alert stream
// consumers' contract.
type Verdict struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Malicious bool      `json:"malicious"`
	Score     *float64  `json:"score"`
	Features  Record    `json:"features,omitempty"`
}
