// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package services adapts long-running components to the suture.Service
// interface.
package services

import "context"

// ContextHub matches *alerthub.Hub's RunWithContext method, keeping this
// package free of a direct alerthub import.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the alert hub's run loop as a supervised service.
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates a hub service wrapper.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{hub: hub, name: "alert-hub"}
}

// Serve implements suture.Service by delegating to RunWithContext, which
// drains the broadcast channel until the context is canceled and then closes
// every subscriber.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (s *HubService) String() string { return s.name }
