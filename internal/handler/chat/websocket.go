package chat

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleChatWS streams one turn over a WebSocket. The client sends a single
// turn request as JSON; the server replies with the same event sequence as
// the SSE endpoint and closes the socket after the done event.
func (h *Handler) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req turn.Request
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wireEvent{Type: "error", Error: "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		_ = conn.WriteJSON(wireEvent{Type: "error", Error: err.Error()})
		return
	}
	if h.orch == nil {
		_ = conn.WriteJSON(wireEvent{Type: "error", Error: "agent unavailable"})
		return
	}

	// When the peer closes the socket, cancel the turn so the in-flight
	// generation call is released.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range h.orch.Stream(ctx, req) {
		if err := conn.WriteJSON(toWire(ev)); err != nil {
			h.log.Debug("websocket client gone", zap.Error(err), zap.String("session_id", req.SessionID))
			return
		}
	}

	h.log.Info("websocket stream complete", zap.String("session_id", req.SessionID))
}
