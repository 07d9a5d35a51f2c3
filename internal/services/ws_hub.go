package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types pushed over the websocket
const (
	EventConnected             = "connected"
	EventFriendRequest         = "friend_request"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventFriendRemoved         = "friend_removed"
	EventFriendProgress        = "friend_progress"
	EventError                 = "error"
)

const writeTimeout = 10 * time.Second

// ErrConnectionReplaced is returned by Reply when conn is no longer the
// user's registered connection
var ErrConnectionReplaced = errors.New("connection replaced")

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// wsClient serializes writes to one connection
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user, replacing any older one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}

	h.connections[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[userID]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	return h.send(userID, client, message)
}

// Reply answers on conn itself, as long as conn is still the user's
// registered connection
func (h *WSHub) Reply(userID string, conn *websocket.Conn, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists || client.conn != conn {
		return ErrConnectionReplaced
	}

	return h.send(userID, client, message)
}

func (h *WSHub) send(userID string, client *wsClient, message WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Notify sends a message if the user is online and ignores offline users
func (h *WSHub) Notify(userID string, message WSMessage) {
	if !h.IsOnline(userID) {
		return
	}
	if err := h.SendToUser(userID, message); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("type", message.Type).
			Msg("Failed to deliver event")
	}
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// Close drops every connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, client := range h.connections {
		client.conn.Close()
		delete(h.connections, userID)
	}
}
