// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/flowsentry/flowsentry/internal/alerthub"
	"github.com/flowsentry/flowsentry/internal/classifier"
	"github.com/flowsentry/flowsentry/internal/config"
	"github.com/flowsentry/flowsentry/internal/models"
	"github.com/flowsentry/flowsentry/internal/pipeline"
)

// scriptedModel labels everything with a fixed verdict.
type scriptedModel struct {
	malicious bool
	score     float64
}

func (m scriptedModel) Classify([]float64) (bool, *float64, error) {
	s := m.score
	return m.malicious, &s, nil
}

func (m scriptedModel) Name() string { return "scripted" }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 8000,
			Timeout: 30 * time.Second, Environment: "development",
		},
		Hub: config.HubConfig{BufferCapacity: 200, QueueDepth: 100, BroadcastDepth: 256},
		API: config.APIConfig{DefaultLimit: 50, MaxLimit: 200},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

// newTestServer wires a full router around the given model and returns the
// server plus the running hub.
func newTestServer(t *testing.T, model classifier.Model) (*httptest.Server, *alerthub.Hub) {
	t.Helper()
	return newTestServerWithConfig(t, model, testConfig())
}

func newTestServerWithConfig(t *testing.T, model classifier.Model, cfg *config.Config) (*httptest.Server, *alerthub.Hub) {
	t.Helper()

	hub := alerthub.New(alerthub.Config{
		BufferCapacity: cfg.Hub.BufferCapacity,
		QueueDepth:     cfg.Hub.QueueDepth,
		BroadcastDepth: cfg.Hub.BroadcastDepth,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	engine := pipeline.New(nil, model, hub)
	handler := NewHandler(engine, hub, cfg, "test")
	srv := httptest.NewServer(NewRouter(handler, cfg).Setup())
	t.Cleanup(srv.Close)
	return srv, hub
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()

	var env models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func postRecord(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestPredictSuccess(t *testing.T) {
	srv, _ := newTestServer(t, scriptedModel{malicious: true, score: 0.92})

	resp := postRecord(t, srv.URL+"/predict", `{"duration": 1.5, "proto": "tcp"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Fatalf("envelope status = %q", env.Status)
	}

	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data type = %T", env.Data)
	}
	if data["id"] == "" || data["id"] == nil {
		t.Fatal("verdict id missing")
	}
	if data["malicious"] != true {
		t.Fatalf("malicious = %v, want true", data["malicious"])
	}
	if score, ok := data["score"].(float64); !ok || score != 0.92 {
		t.Fatalf("score = %v, want 0.92", data["score"])
	}
	if _, present := data["features"]; present {
		t.Fatal("scoring response should not echo features")
	}
}

func TestPredictInvalidRecord(t *testing.T) {
	srv, _ := newTestServer(t, scriptedModel{})

	tests := []struct {
		name string
		body string
	}{
		{"null", `null`},
		{"array", `[1, 2, 3]`},
		{"scalar", `42`},
		{"not json", `hello`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRecord(t, srv.URL+"/predict", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			env := decodeEnvelope(t, resp)
			if env.Error == nil || env.Error.Code != "INVALID_RECORD" {
				t.Fatalf("error = %+v, want INVALID_RECORD", env.Error)
			}
		})
	}
}

func TestScoringModelUnavailable(t *testing.T) {
	srv, hub := newTestServer(t, classifier.Unavailable{})

	sub := hub.Subscribe(false)
	<-sub.Messages() // hello

	for _, path := range []string{"/predict", "/ingest"} {
		resp := postRecord(t, srv.URL+path, `{"duration": 1}`)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d, want 503", path, resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Code != "MODEL_UNAVAILABLE" {
			t.Fatalf("%s error = %+v, want MODEL_UNAVAILABLE", path, env.Error)
		}
	}

	// Refused records must never reach subscribers.
	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIngestPublishesMalicious(t *testing.T) {
	srv, hub := newTestServer(t, scriptedModel{malicious: true, score: 0.8})

	sub := hub.Subscribe(false)
	<-sub.Messages() // hello

	resp := postRecord(t, srv.URL+"/ingest", `{"proto": "udp"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	select {
	case msg := <-sub.Messages():
		if msg.Hello {
			t.Fatalf("got handshake message, want verdict")
		}
	case <-time.After(time.Second):
		t.Fatal("malicious ingest not fanned out")
	}
}

func TestIngestBenignNotPublished(t *testing.T) {
	srv, hub := newTestServer(t, scriptedModel{malicious: false, score: 0.1})

	sub := hub.Subscribe(false)
	<-sub.Messages() // hello

	resp := postRecord(t, srv.URL+"/ingest", `{"proto": "tcp"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected message %+v for benign record", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHealth(t *testing.T) {
	t.Run("model loaded", func(t *testing.T) {
		srv, _ := newTestServer(t, scriptedModel{})
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		data := env.Data.(map[string]interface{})
		if data["status"] != "ok" || data["model_loaded"] != true {
			t.Fatalf("health data = %v", data)
		}
	})

	t.Run("degraded without model", func(t *testing.T) {
		srv, _ := newTestServer(t, classifier.Unavailable{})
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, health stays 200 when degraded", resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		data := env.Data.(map[string]interface{})
		if data["status"] != "degraded" || data["model_loaded"] != false {
			t.Fatalf("health data = %v", data)
		}
	})

	t.Run("readiness follows model", func(t *testing.T) {
		srv, _ := newTestServer(t, classifier.Unavailable{})
		resp, err := http.Get(srv.URL + "/health/ready")
		if err != nil {
			t.Fatalf("GET /health/ready: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("ready status = %d, want 503", resp.StatusCode)
		}

		live, err := http.Get(srv.URL + "/health/live")
		if err != nil {
			t.Fatalf("GET /health/live: %v", err)
		}
		live.Body.Close()
		if live.StatusCode != http.StatusOK {
			t.Fatalf("live status = %d, want 200", live.StatusCode)
		}
	})
}

func TestRecentAlerts(t *testing.T) {
	srv, _ := newTestServer(t, scriptedModel{malicious: true, score: 0.7})

	for i := 0; i < 3; i++ {
		resp := postRecord(t, srv.URL+"/ingest", `{"proto": "tcp"}`)
		resp.Body.Close()
	}

	// Fan-out is asynchronous; poll until the ring catches up.
	deadline := time.Now().Add(time.Second)
	for {
		resp, err := http.Get(srv.URL + "/alerts/recent?limit=2")
		if err != nil {
			t.Fatalf("GET /alerts/recent: %v", err)
		}
		env := decodeEnvelope(t, resp)
		data := env.Data.(map[string]interface{})
		if count, ok := data["count"].(float64); ok && count == 2 {
			alerts := data["alerts"].([]interface{})
			if len(alerts) != 2 {
				t.Fatalf("alerts length = %d, want 2", len(alerts))
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("ring never reached 2 alerts, last data = %v", data)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRecentAlertsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t, scriptedModel{})

	resp, err := http.Get(srv.URL + "/alerts/recent?limit=0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, scriptedModel{})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
