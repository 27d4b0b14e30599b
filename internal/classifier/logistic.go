// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package classifier

import (
	"fmt"
	"math"
)

// logistic evaluates a logistic-regression model over the feature vector.
type logistic struct {
	weights     []float64
	bias        float64
	threshold   float64
	probability bool
}

func newLogistic(spec *LogisticSpec, dims int, threshold float64, probability bool) (*logistic, error) {
	if len(spec.Weights) != dims {
		return nil, fmt.Errorf("logistic model has %d weights, schema dimensionality is %d", len(spec.Weights), dims)
	}
	return &logistic{
		weights:     spec.Weights,
		bias:        spec.Bias,
		threshold:   threshold,
		probability: probability,
	}, nil
}

// Classify computes sigmoid(w·x + b) as P(malicious).
func (l *logistic) Classify(vec []float64) (bool, *float64, error) {
	z := l.bias
	for i, w := range l.weights {
		z += w * vec[i]
	}
	score := 1 / (1 + math.Exp(-z))

	malicious := score >= l.threshold
	if !l.probability {
		return malicious, nil, nil
	}
	return malicious, &score, nil
}

// Name implements Model.
func (l *logistic) Name() string { return "logistic" }
