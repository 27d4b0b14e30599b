// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package features holds the frozen feature schema produced by the training
// pipeline and the normalizer that maps raw records onto the fixed-order
// vector the classifier expects. Everything here is read-only after startup
// and safe for concurrent use.
package features

import (
	"fmt"
)

// FieldKind distinguishes numeric from categorical schema fields.
type FieldKind string

const (
	// KindNumeric fields are imputed and scaled to one column.
	KindNumeric FieldKind = "numeric"
	// KindCategorical fields are one-hot encoded against frozen categories.
	KindCategorical FieldKind = "categorical"
)

// Field is one entry of the frozen schema. Numeric fields carry the
// training-time imputation value and scaling parameters; categorical fields
// carry the enumerated categories observed at training time.
type Field struct {
	Name       string    `json:"name"`
	Kind       FieldKind `json:"kind"`
	Impute     float64   `json:"impute,omitempty"`
	Center     float64   `json:"center,omitempty"`
	Spread     float64   `json:"spread,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}

// Schema is the ordered list of expected fields plus derived lookup state.
// High-cardinality identifier-like fields are excluded at artifact-build
// time, so they never appear here.
type Schema struct {
	fields   []Field
	offsets  []int
	catIndex []map[string]int
	dims     int
}

// NewSchema validates the field list and precomputes column offsets.
// A zero or negative Spread is normalized to 1 so scaling stays total.
func NewSchema(fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}

	s := &Schema{
		fields:   make([]Field, len(fields)),
		offsets:  make([]int, len(fields)),
		catIndex: make([]map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	seen := make(map[string]struct{}, len(fields))
	offset := 0
	for i := range s.fields {
		f := &s.fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("schema field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("schema field %q duplicated", f.Name)
		}
		seen[f.Name] = struct{}{}

		s.offsets[i] = offset
		switch f.Kind {
		case KindNumeric:
			if f.Spread <= 0 {
				f.Spread = 1
			}
			offset++
		case KindCategorical:
			if len(f.Categories) == 0 {
				return nil, fmt.Errorf("categorical field %q has no categories", f.Name)
			}
			idx := make(map[string]int, len(f.Categories))
			for j, c := range f.Categories {
				if _, dup := idx[c]; dup {
					return nil, fmt.Errorf("categorical field %q repeats category %q", f.Name, c)
				}
				idx[c] = j
			}
			s.catIndex[i] = idx
			offset += len(f.Categories)
		default:
			return nil, fmt.Errorf("schema field %q has unknown kind %q", f.Name, f.Kind)
		}
	}
	s.dims = offset

	return s, nil
}

// Fields returns the ordered schema fields.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Dimensions returns the derived feature-vector length: one column per
// numeric field plus one per known category of each categorical field.
// Identical for every record for the life of the process.
func (s *Schema) Dimensions() int {
	return s.dims
}

// Offset returns the first vector column of field i.
func (s *Schema) Offset(i int) int {
	return s.offsets[i]
}
