// FlowSentry - Real-Time Network Traffic Classification and Alerting
// Copyright 2026 FlowSentry Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsentry/flowsentry

package alerthub

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/flowsentry/flowsentry/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client bridges one WebSocket connection to a hub subscription. The
// connection is output-only from the server's perspective: the read pump
// exists solely to service pings and to notice the peer going away.
type Client struct {
	hub  *Hub
	sub  *Subscriber
	conn *websocket.Conn
}

// NewClient subscribes to the hub and wraps the connection. Call Start to
// begin the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, backlog bool) *Client {
	return &Client{
		hub:  hub,
		sub:  hub.Subscribe(backlog),
		conn: conn,
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames until the peer disconnects, then
// unsubscribes. Unsubscribe is idempotent, so racing the write pump's own
// cleanup is harmless.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.sub)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}
		// Inbound application messages are ignored.
	}
}

// writePump forwards queued messages to the peer in order and keeps the
// connection alive with pings. A send failure tears down only this
// subscriber.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.Unsubscribe(c.sub)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sub.Messages():
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// Hub closed the queue.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logging.Debug().Err(err).Uint64("subscriber_id", c.sub.ID()).Msg("subscriber send failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
