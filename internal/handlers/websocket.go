package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"habit-tracker/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades authenticated clients onto the event hub
type WebSocketHandler struct {
	hub         *services.WSHub
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	if err := h.hub.Reply(userID, conn, services.WSMessage{
		Type:      services.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send connected event")
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(userID, conn, done)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", userID).Msg("WebSocket closed unexpectedly")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(userID, conn, "Invalid message format")
			continue
		}

		h.handleMessage(userID, conn, msg)
	}
}

// handleMessage answers client messages on the connection they arrived on.
// The channel is server-push only, so clients may just ping.
func (h *WebSocketHandler) handleMessage(userID string, conn *websocket.Conn, msg services.WSMessage) {
	switch msg.Type {
	case "ping":
		h.reply(userID, conn, services.WSMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
	default:
		h.sendError(userID, conn, "Unknown message type")
	}
}

// keepAlive pings the client until done is closed
func (h *WebSocketHandler) keepAlive(userID string, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Debug().Err(err).Str("user_id", userID).Msg("WebSocket ping failed")
				return
			}
		}
	}
}

// sendError sends an error event back on conn
func (h *WebSocketHandler) sendError(userID string, conn *websocket.Conn, message string) {
	h.reply(userID, conn, services.WSMessage{
		Type:    services.EventError,
		Message: message,
	})
}

func (h *WebSocketHandler) reply(userID string, conn *websocket.Conn, msg services.WSMessage) {
	if err := h.hub.Reply(userID, conn, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("WebSocket reply dropped")
	}
}
