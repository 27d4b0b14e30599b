// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package alerthub

import "github.com/flowsentry/flowsentry/internal/models"

// ring is a fixed-capacity buffer of the most recent verdicts, oldest
// evicted first. Not goroutine-safe on its own; the hub's mutex guards it.
type ring struct {
	buf   []models.Verdict
	head  int // next write position
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]models.Verdict, capacity)}
}

func (r *ring) push(v models.Verdict) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) len() int { return r.count }

// snapshot copies up to limit of the newest entries, oldest first.
func (r *ring) snapshot(limit int) []models.Verdict {
	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]models.Verdict, 0, limit)
	start := r.head - limit
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < limit; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
