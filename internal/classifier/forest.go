// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package classifier

import "fmt"

// forest averages leaf probabilities across a decision-tree ensemble, the
// same prediction rule as the training pipeline's random forest.
type forest struct {
	trees       []TreeSpec
	threshold   float64
	probability bool
}

func newForest(spec *ForestSpec, dims int, threshold float64, probability bool) (*forest, error) {
	if len(spec.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}

	for ti, tree := range spec.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Feature < 0 {
				if n.Value < 0 || n.Value > 1 {
					return nil, fmt.Errorf("tree %d leaf %d value %v outside [0,1]", ti, ni, n.Value)
				}
				continue
			}
			if n.Feature >= dims {
				return nil, fmt.Errorf("tree %d node %d references feature %d beyond schema dimensionality %d", ti, ni, n.Feature, dims)
			}
			// Children must point forward so traversal terminates.
			if n.Left <= ni || n.Right <= ni || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d has invalid children (%d, %d)", ti, ni, n.Left, n.Right)
			}
		}
	}

	return &forest{trees: spec.Trees, threshold: threshold, probability: probability}, nil
}

// Classify walks every tree and averages the reached leaves' probabilities.
func (f *forest) Classify(vec []float64) (bool, *float64, error) {
	var sum float64
	for ti := range f.trees {
		nodes := f.trees[ti].Nodes
		ni := 0
		for nodes[ni].Feature >= 0 {
			n := &nodes[ni]
			if vec[n.Feature] <= n.Threshold {
				ni = n.Left
			} else {
				ni = n.Right
			}
		}
		sum += nodes[ni].Value
	}

	score := sum / float64(len(f.trees))
	malicious := score >= f.threshold
	if !f.probability {
		return malicious, nil, nil
	}
	return malicious, &score, nil
}

// Name implements Model.
func (f *forest) Name() string { return "forest" }
