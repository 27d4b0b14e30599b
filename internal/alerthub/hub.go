// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

// Package alerthub is the in-process publish/subscribe broker between the
// ingestion paths and live alert subscribers. Producers never touch
// subscriber transports directly; all interaction goes through Publish,
// Subscribe and Unsubscribe.
package alerthub

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/flowsentry/flowsentry/internal/logging"
	"github.com/flowsentry/flowsentry/internal/metrics"
	"github.com/flowsentry/flowsentry/internal/models"
)

// MessageTypeHello tags the handshake frame sent to every new subscriber.
const MessageTypeHello = "hello"

// Message is one frame on a subscriber's outbound queue. The handshake
// serializes as {"type":"hello"}; every later frame is the verdict object
// itself, with no wrapper.
type Message struct {
	Hello   bool
	Verdict models.Verdict
}

func (m Message) MarshalJSON() ([]byte, error) {
	if m.Hello {
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: MessageTypeHello})
	}
	return json.Marshal(m.Verdict)
}

// Config bounds the hub's queues. Zero values fall back to defaults.
type Config struct {
	// BufferCapacity is the size of the recent-verdict ring buffer.
	BufferCapacity int

	// QueueDepth is each subscriber's outbound queue capacity.
	QueueDepth int

	// BroadcastDepth is the capacity of the publish hand-off channel.
	BroadcastDepth int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferCapacity: 200,
		QueueDepth:     100,
		BroadcastDepth: 256,
	}
}

// Hub owns the subscriber registry and the recent-verdict ring buffer.
// Both are guarded by a single mutex; fan-out runs on the hub's own
// goroutine so Publish never blocks a producer.
type Hub struct {
	cfg       Config
	broadcast chan models.Verdict

	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	ring        *ring
}

// New creates a Hub; call Run or RunWithContext to start fan-out.
func New(cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = def.BufferCapacity
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = def.QueueDepth
	}
	if cfg.BroadcastDepth <= 0 {
		cfg.BroadcastDepth = def.BroadcastDepth
	}

	return &Hub{
		cfg:         cfg,
		broadcast:   make(chan models.Verdict, cfg.BroadcastDepth),
		subscribers: make(map[*Subscriber]struct{}),
		ring:        newRing(cfg.BufferCapacity),
	}
}

// Publish hands a verdict to the fan-out loop. It never blocks: if the
// hand-off channel is full the verdict is dropped with a warning, so a
// stalled hub cannot back up ingestion.
func (h *Hub) Publish(v models.Verdict) {
	select {
	case h.broadcast <- v:
		metrics.HubPublished.Inc()
	default:
		logging.Warn().Str("verdict_id", v.ID).Msg("broadcast channel full, dropping verdict")
	}
}

// Subscribe registers a new subscriber. The handshake message is enqueued
// first; when backlog is true the current ring snapshot follows, before any
// live verdict becomes visible to this subscriber.
func (h *Hub) Subscribe(backlog bool) *Subscriber {
	sub := newSubscriber(h.cfg.QueueDepth)

	h.mu.Lock()
	sub.enqueue(Message{Hello: true})
	if backlog {
		for _, v := range h.ring.snapshot(h.ring.len()) {
			sub.enqueue(Message{Verdict: v})
		}
	}
	h.subscribers[sub] = struct{}{}
	total := len(h.subscribers)
	h.mu.Unlock()

	metrics.HubSubscribers.Inc()
	logging.Info().Uint64("subscriber_id", sub.id).Int("total_subscribers", total).Msg("alert subscriber connected")
	return sub
}

// Unsubscribe removes a subscriber and closes its queue. Safe to call more
// than once and concurrently with fan-out.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		metrics.HubSubscribers.Dec()
		logging.Info().Uint64("subscriber_id", sub.id).Int("total_subscribers", total).Msg("alert subscriber disconnected")
	}
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Recent returns up to limit of the most recent verdicts, oldest first.
func (h *Hub) Recent(limit int) []models.Verdict {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ring.snapshot(limit)
}

// Run starts the fan-out loop and blocks forever. Prefer RunWithContext
// under supervision.
func (h *Hub) Run() {
	for v := range h.broadcast {
		h.fanOut(v)
	}
}

// RunWithContext runs the fan-out loop until the context is canceled, then
// closes every subscriber and returns ctx.Err(). Designed for suture
// supervision: the hub can be restarted without leaking queues.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			closed := h.closeAll()
			logging.Info().
				Str("component", "alert-hub").
				Int("subscribers_closed", closed).
				Msg("alert hub stopped")
			return ctx.Err()
		case v := <-h.broadcast:
			h.fanOut(v)
		}
	}
}

// fanOut appends the verdict to the ring and enqueues it to every
// subscriber. Ring insertion and enqueue-to-all happen under one lock, so a
// publish is atomic with respect to Subscribe's backlog read. Subscribers
// are walked in id order for deterministic delivery in tests.
func (h *Hub) fanOut(v models.Verdict) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ring.push(v)

	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	msg := Message{Verdict: v}
	for _, sub := range subs {
		sub.enqueue(msg)
	}
}

func (h *Hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	closed := len(h.subscribers)
	for sub := range h.subscribers {
		close(sub.send)
		delete(h.subscribers, sub)
	}
	metrics.HubSubscribers.Sub(float64(closed))
	return closed
}
