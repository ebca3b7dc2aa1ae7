package http

import (
	"log/slog"
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"github.com/MisterMushn/bilanzieren/internal/websocket"
)

// WebSocketHandler upgrades event-stream connections and hands them to
// the hub.
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(hub *websocket.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from the same origin as the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("handler", "websocket")),
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := websocket.ServeWS(h.hub, h.upgrader, w, r); err != nil {
		// Upgrade already wrote an HTTP error to the client.
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
	}
}
