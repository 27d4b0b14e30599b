// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package artifact loads the frozen (schema, model) pair exported by the
// external training pipeline. The on-disk format is a single JSON document:
//
//	{
//	  "version": 1,
//	  "schema": {"fields": [{"name": "duration", "kind": "numeric",
//	             "impute": 0.8, "center": 1.2, "spread": 3.4}, ...]},
//	  "model":  {"type": "forest", "threshold": 0.5,
//	             "forest": {"trees": [...]}}
//	}
//
// The artifact is read once at process start; everything it yields is
// immutable for the process lifetime.
package artifact

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/flowsentry/flowsentry/internal/classifier"
	"github.com/flowsentry/flowsentry/internal/features"
)

// supportedVersion is the artifact format this build understands.
const supportedVersion = 1

// File mirrors the artifact document layout.
type File struct {
	Version int `json:"version"`
	Schema  struct {
		Fields []features.Field `json:"fields"`
	} `json:"schema"`
	Model classifier.Spec `json:"model"`
}

// Load reads and validates an artifact file, returning the frozen schema and
// a ready-to-use model.
func Load(path string) (*features.Schema, classifier.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes an artifact document from memory.
func Parse(data []byte) (*features.Schema, classifier.Model, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("decode artifact: %w", err)
	}
	if f.Version != supportedVersion {
		return nil, nil, fmt.Errorf("artifact version %d not supported (want %d)", f.Version, supportedVersion)
	}

	schema, err := features.NewSchema(f.Schema.Fields)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact schema: %w", err)
	}

	model, err := classifier.FromSpec(f.Model, schema.Dimensions())
	if err != nil {
		return nil, nil, fmt.Errorf("artifact model: %w", err)
	}

	return schema, model, nil
}
