// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package features

import (
	"math"
	"testing"

	"github.com/flowsentry/flowsentry/internal/models"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema([]Field{
		{Name: "duration", Kind: KindNumeric, Impute: 10, Center: 10, Spread: 5},
		{Name: "proto", Kind: KindCategorical, Categories: []string{"tcp", "udp", "icmp"}},
		{Name: "bytes", Kind: KindNumeric, Impute: 0, Center: 100, Spread: 50},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func TestNewSchemaValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"empty", nil},
		{"unnamed field", []Field{{Kind: KindNumeric}}},
		{"duplicate name", []Field{
			{Name: "a", Kind: KindNumeric},
			{Name: "a", Kind: KindNumeric},
		}},
		{"categorical without categories", []Field{
			{Name: "proto", Kind: KindCategorical},
		}},
		{"repeated category", []Field{
			{Name: "proto", Kind: KindCategorical, Categories: []string{"tcp", "tcp"}},
		}},
		{"unknown kind", []Field{
			{Name: "x", Kind: FieldKind("fancy")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSchema(tt.fields); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSchemaDimensions(t *testing.T) {
	s := testSchema(t)

	// 1 (duration) + 3 (proto one-hot) + 1 (bytes)
	if got := s.Dimensions(); got != 5 {
		t.Fatalf("Dimensions() = %d, want 5", got)
	}
	if got := s.Offset(1); got != 1 {
		t.Fatalf("Offset(1) = %d, want 1", got)
	}
	if got := s.Offset(2); got != 4 {
		t.Fatalf("Offset(2) = %d, want 4", got)
	}
}

func TestSchemaZeroSpreadNormalized(t *testing.T) {
	s, err := NewSchema([]Field{
		{Name: "x", Kind: KindNumeric, Center: 2, Spread: 0},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	vec := s.Normalize(models.Record{"x": models.Number(5)})
	if vec[0] != 3 {
		t.Fatalf("zero spread should scale by 1: got %v, want 3", vec[0])
	}
}

func TestNormalizeFixedLength(t *testing.T) {
	s := testSchema(t)

	records := []models.Record{
		{},
		{"duration": models.Number(12)},
		{"duration": models.Number(12), "proto": models.String("tcp"), "bytes": models.Number(150), "extra": models.Number(1)},
	}
	for _, rec := range records {
		if got := len(s.Normalize(rec)); got != s.Dimensions() {
			t.Fatalf("Normalize length = %d, want %d", got, s.Dimensions())
		}
	}
}

func TestNormalizeNumeric(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name string
		rec  models.Record
		want float64
	}{
		{"present", models.Record{"duration": models.Number(20)}, 2},
		{"missing imputed", models.Record{}, 0},
		{"string imputed", models.Record{"duration": models.String("fast")}, 0},
		{"nan imputed", models.Record{"duration": models.Number(math.NaN())}, 0},
		{"inf imputed", models.Record{"duration": models.Number(math.Inf(1))}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := s.Normalize(tt.rec)
			if vec[0] != tt.want {
				t.Fatalf("duration column = %v, want %v", vec[0], tt.want)
			}
		})
	}
}

func TestNormalizeCategorical(t *testing.T) {
	s := testSchema(t)

	t.Run("known category sets one column", func(t *testing.T) {
		vec := s.Normalize(models.Record{"proto": models.String("udp")})
		if vec[1] != 0 || vec[2] != 1 || vec[3] != 0 {
			t.Fatalf("one-hot block = %v, want [0 1 0]", vec[1:4])
		}
	})

	t.Run("unseen category leaves block zero", func(t *testing.T) {
		vec := s.Normalize(models.Record{"proto": models.String("sctp")})
		if vec[1] != 0 || vec[2] != 0 || vec[3] != 0 {
			t.Fatalf("one-hot block = %v, want all zero", vec[1:4])
		}
	})

	t.Run("missing category leaves block zero", func(t *testing.T) {
		vec := s.Normalize(models.Record{})
		if vec[1] != 0 || vec[2] != 0 || vec[3] != 0 {
			t.Fatalf("one-hot block = %v, want all zero", vec[1:4])
		}
	})

	t.Run("numeric category label stringified", func(t *testing.T) {
		s2, err := NewSchema([]Field{
			{Name: "port_class", Kind: KindCategorical, Categories: []string{"80", "443"}},
		})
		if err != nil {
			t.Fatalf("NewSchema: %v", err)
		}
		vec := s2.Normalize(models.Record{"port_class": models.Number(443)})
		if vec[0] != 0 || vec[1] != 1 {
			t.Fatalf("one-hot block = %v, want [0 1]", vec)
		}
	})
}

func TestNormalizeUnknownFieldsIdentical(t *testing.T) {
	s := testSchema(t)

	base := models.Record{"duration": models.Number(15), "proto": models.String("tcp")}
	extra := models.Record{
		"duration": models.Number(15),
		"proto":    models.String("tcp"),
		"flow_id":  models.String("abc-123"),
		"ttl":      models.Number(64),
	}

	a := s.Normalize(base)
	b := s.Normalize(extra)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("column %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}
