// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package features

import (
	"math"

	"github.com/flowsentry/flowsentry/internal/models"
)

// Normalize maps a raw record onto the schema's fixed-order feature vector.
// The transform is total and pure:
//
//   - numeric field present as a number: (x - center) / spread
//   - numeric field missing or non-numeric: (impute - center) / spread
//   - categorical field: one-hot against the frozen categories; a missing or
//     unseen category leaves the field's block all zero
//   - record fields not in the schema are dropped silently
//
// Non-finite inputs (NaN, ±Inf) are treated as missing so a hostile record
// cannot poison the vector.
func (s *Schema) Normalize(rec models.Record) []float64 {
	vec := make([]float64, s.dims)

	for i := range s.fields {
		f := &s.fields[i]
		off := s.offsets[i]

		switch f.Kind {
		case KindNumeric:
			x := f.Impute
			if v, ok := rec[f.Name]; ok && v.Kind == models.ValueNumber && !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0) {
				x = v.Num
			}
			vec[off] = (x - f.Center) / f.Spread

		case KindCategorical:
			v, ok := rec[f.Name]
			if !ok {
				continue
			}
			label, ok := v.AsString()
			if !ok {
				continue
			}
			if j, known := s.catIndex[i][label]; known {
				vec[off+j] = 1
			}
		}
	}

	return vec
}
