// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package validation

import (
	"strings"
	"testing"
)

type limitRequest struct {
	Limit int `validate:"min=1,max=100"`
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&limitRequest{Limit: 50}); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructFails(t *testing.T) {
	err := ValidateStruct(&limitRequest{Limit: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("errors = %d, want 1", len(err.Errors()))
	}
	if got := err.Errors()[0].Field(); got != "Limit" {
		t.Fatalf("field = %q, want Limit", got)
	}
	if !strings.Contains(err.Error(), "at least 1") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestValidateStructMultipleFields(t *testing.T) {
	type req struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=1"`
	}

	err := ValidateStruct(&req{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("errors = %d, want 2", len(err.Errors()))
	}

	details := err.Details()
	if _, ok := details["fields"]; !ok {
		t.Fatalf("details = %v, want fields list", details)
	}
}
