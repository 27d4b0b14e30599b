// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package config holds all application configuration, loaded from defaults,
// an optional YAML file and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Model    ModelConfig    `koanf:"model"`
	Hub      HubConfig      `koanf:"hub"`
	Bus      BusConfig      `koanf:"bus"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8000)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// ModelConfig points at the classifier artifact. An empty or missing path is
// not an error: the service starts degraded and scoring endpoints return
// MODEL_UNAVAILABLE until an artifact is supplied.
type ModelConfig struct {
	Path string `koanf:"path"`
}

// HubConfig bounds the alert hub's memory use. All three are fixed at
// startup.
type HubConfig struct {
	BufferCapacity int `koanf:"buffer_capacity"`
	QueueDepth     int `koanf:"queue_depth"`
	BroadcastDepth int `koanf:"broadcast_depth"`
}

// BusConfig holds the optional NATS ingestion settings.
type BusConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	Topic         string        `koanf:"topic"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// APIConfig bounds list responses.
type APIConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the loaded configuration for values that would make the
// service misbehave at runtime.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateHub(); err != nil {
		return err
	}
	if err := c.validateBus(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateHub() error {
	if c.Hub.BufferCapacity < 1 {
		return fmt.Errorf("hub.buffer_capacity must be at least 1, got %d", c.Hub.BufferCapacity)
	}
	if c.Hub.QueueDepth < 1 {
		return fmt.Errorf("hub.queue_depth must be at least 1, got %d", c.Hub.QueueDepth)
	}
	if c.Hub.BroadcastDepth < 1 {
		return fmt.Errorf("hub.broadcast_depth must be at least 1, got %d", c.Hub.BroadcastDepth)
	}
	return nil
}

func (c *Config) validateBus() error {
	if !c.Bus.Enabled {
		return nil
	}
	if c.Bus.URL == "" {
		return fmt.Errorf("bus.url is required when bus.enabled is true")
	}
	if !strings.HasPrefix(c.Bus.URL, "nats://") && !strings.HasPrefix(c.Bus.URL, "tls://") {
		return fmt.Errorf("bus.url must use nats:// or tls:// scheme, got %q", c.Bus.URL)
	}
	if c.Bus.Topic == "" {
		return fmt.Errorf("bus.topic is required when bus.enabled is true")
	}
	if c.Bus.ReconnectWait <= 0 {
		return fmt.Errorf("bus.reconnect_wait must be positive, got %s", c.Bus.ReconnectWait)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultLimit < 1 {
		return fmt.Errorf("api.default_limit must be at least 1, got %d", c.API.DefaultLimit)
	}
	if c.API.MaxLimit < c.API.DefaultLimit {
		return fmt.Errorf("api.max_limit (%d) must not be below api.default_limit (%d)", c.API.MaxLimit, c.API.DefaultLimit)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level must be a valid level, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port pair for the HTTP listener.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
