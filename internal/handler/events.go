package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourorg/rentease/internal/notify"
	"github.com/yourorg/rentease/internal/security/auth"
)

// EventsHandler streams domain events over a WebSocket connection. Clients
// authenticate with a token query parameter since browsers cannot set headers
// on WebSocket upgrades.
type EventsHandler struct {
	hub            *notify.Hub
	tokens         *auth.TokenManager
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *notify.Hub, tokens *auth.TokenManager, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		hub:            hub,
		tokens:         tokens,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use the instance's allowed origins
func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	h.logger.Info("event stream opened", slog.Int64("user_id", claims.UserID))

	// Heartbeat ping to keep the connection alive through proxies
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.Int64("user_id", claims.UserID))
				}
				return
			}
		}
	}
}
