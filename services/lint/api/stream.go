// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/lintbridge/services/lint/diagnostics"
)

const (
	// streamBuffer is the per-client event buffer. Slow clients lose
	// older events and still receive the newest snapshot.
	streamBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamMessage is one websocket frame: the full diagnostic set of a
// document after a change.
type StreamMessage struct {
	Type        string                   `json:"type"`
	URI         string                   `json:"uri"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// HandleStream handles GET /v1/stream.
//
// Description:
//
//	Upgrades to a websocket and pushes a StreamMessage whenever a
//	document's diagnostics change. An optional ?uri= restricts the stream
//	to one document. The connection closes when the client disconnects.
func (h *Handlers) HandleStream(c *gin.Context) {
	logger := h.requestLogger(c, "HandleStream")
	filter := c.Query("uri")

	// Subscribe first so no change is lost between handshake and loop.
	events, cancel := h.orch.Collection().Subscribe(streamBuffer)
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	logger.Debug("Diagnostics stream opened", slog.String("uri", filter))

	// The read side only services control frames and notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Debug("Diagnostics stream closed by client")
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filter != "" && ev.URI != filter {
				continue
			}
			if err := sendJSON(conn, streamMessage(ev)); err != nil {
				logger.Debug("Diagnostics stream write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func streamMessage(ev diagnostics.Event) StreamMessage {
	diags := make([]diagnostics.Diagnostic, 0, len(ev.Offenses))
	for _, o := range ev.Offenses {
		diags = append(diags, diagnostics.FromOffense(o))
	}
	return StreamMessage{Type: "diagnostics", URI: ev.URI, Diagnostics: diags}
}

func sendJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
