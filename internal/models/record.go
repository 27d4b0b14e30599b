// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package models defines the wire-level data types shared across FlowSentry:
// input records, classification verdicts and the HTTP response envelope.
package models

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
)

// ValueKind tags the type of a raw record value.
type ValueKind uint8

const (
	// ValueAbsent marks a value that is missing or not a JSON scalar.
	ValueAbsent ValueKind = iota
	// ValueNumber marks a JSON number.
	ValueNumber
	// ValueString marks a JSON string.
	ValueString
	// ValueBool marks a JSON boolean.
	ValueBool
)

// Value is a tagged union over the scalar types a traffic record may carry.
// Nulls and non-scalar JSON values (objects, arrays) decode as ValueAbsent so
// that downstream normalization stays total.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

// Number constructs a numeric value.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// String constructs a string value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Boolean constructs a boolean value.
func Boolean(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// AsString renders the value as a category label. Numbers use the shortest
// round-trip formatting, booleans render as "true"/"false". Absent values
// return "" and false.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case ValueString:
		return v.Str, true
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64), true
	case ValueBool:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}

// UnmarshalJSON decodes a single JSON scalar into the union.
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case 'n', '{', '[': // null and non-scalar values are treated as absent
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Boolean(b)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
		return nil
	}
}

// MarshalJSON encodes the union back to its JSON scalar form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// Record is one raw traffic sample: arbitrary field names mapped to scalar
// values. Records are created at ingestion, never mutated, and consumed
// within a single pipeline pass.
type Record map[string]Value

// ParseRecord decodes a JSON object into a Record. Any payload that is not a
// JSON object is rejected; individual non-scalar field values are tolerated
// and decode as absent.
func ParseRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	// JSON null unmarshals into a nil map without error.
	if rec == nil {
		return nil, errors.New("record must be a JSON object")
	}
	return rec, nil
}
