// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package classifier

import "fmt"

// Default decision threshold on the malicious-class probability.
const defaultThreshold = 0.5

// Spec is the model section of the frozen artifact file, exported by the
// training pipeline alongside the feature schema.
type Spec struct {
	// Type selects the evaluator: "forest" or "logistic".
	Type string `json:"type"`

	// Threshold on P(malicious); 0 means the default 0.5.
	Threshold float64 `json:"threshold,omitempty"`

	// Probability, when explicitly false, makes Classify return a hard
	// label with no score (mirrors estimators without predict_proba).
	Probability *bool `json:"probability,omitempty"`

	Forest   *ForestSpec   `json:"forest,omitempty"`
	Logistic *LogisticSpec `json:"logistic,omitempty"`
}

// ForestSpec is a flattened decision-tree ensemble.
type ForestSpec struct {
	Trees []TreeSpec `json:"trees"`
}

// TreeSpec holds one tree's nodes; node 0 is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec is one decision node. Feature < 0 marks a leaf, whose Value is
// the leaf's P(malicious). Interior nodes route vec[Feature] <= Threshold
// to Left, otherwise Right.
type NodeSpec struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// LogisticSpec is a logistic-regression model over the feature vector.
type LogisticSpec struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// FromSpec validates the spec against the schema dimensionality and builds
// the matching evaluator.
func FromSpec(spec Spec, dims int) (Model, error) {
	threshold := spec.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("model threshold %v outside [0,1]", threshold)
	}
	probability := spec.Probability == nil || *spec.Probability

	switch spec.Type {
	case "forest":
		if spec.Forest == nil {
			return nil, fmt.Errorf("forest model has no forest section")
		}
		return newForest(spec.Forest, dims, threshold, probability)
	case "logistic":
		if spec.Logistic == nil {
			return nil, fmt.Errorf("logistic model has no logistic section")
		}
		return newLogistic(spec.Logistic, dims, threshold, probability)
	default:
		return nil, fmt.Errorf("unknown model type %q", spec.Type)
	}
}
