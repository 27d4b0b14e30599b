// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package alerthub

import (
	"sync/atomic"

	"github.com/flowsentry/flowsentry/internal/metrics"
)

// subscriberID generates unique, monotonically increasing subscriber IDs,
// giving fan-out a stable iteration order.
var subscriberID atomic.Uint64

// Subscriber is a hub-owned handle with a bounded outbound queue. The owner
// drains Messages until the channel closes; no other component holds a
// reference to the underlying transport.
type Subscriber struct {
	id   uint64
	send chan Message
}

func newSubscriber(depth int) *Subscriber {
	return &Subscriber{
		id:   subscriberID.Add(1),
		send: make(chan Message, depth),
	}
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() uint64 { return s.id }

// Messages returns the outbound queue. The channel is closed by
// Hub.Unsubscribe or hub shutdown.
func (s *Subscriber) Messages() <-chan Message { return s.send }

// enqueue appends msg, evicting this subscriber's oldest unsent message when
// the queue is full. A slow subscriber only ever loses its own messages and
// never delays the publisher or its peers. Must be called with the hub lock
// held so closes cannot race the send.
func (s *Subscriber) enqueue(msg Message) {
	for {
		select {
		case s.send <- msg:
			return
		default:
		}
		select {
		case <-s.send:
			metrics.HubDroppedMessages.Inc()
		default:
			// Queue drained concurrently between the two selects; retry.
		}
	}
}
