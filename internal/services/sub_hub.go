package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Collection names carried on subscription events.
const (
	CollectionFoundCards  = "found_cards"
	CollectionQuestCards  = "quest_cards"
	CollectionAssignments = "contact_assignments"
)

// Event ops.
const (
	OpAdded   = "added"
	OpRemoved = "removed"
)

// Event is a single delta on one of the per-user collections. Clients fold
// these into their latest snapshot; merge views are recomputed from
// snapshots, never from events directly.
type Event struct {
	Collection string      `json:"collection"`
	Op         string      `json:"op"`
	ID         string      `json:"id"`
	Doc        interface{} `json:"doc,omitempty"`
}

// SubHub manages WebSocket subscriptions. Each connected user receives the
// deltas for their own collections only; deltas for different collections
// may arrive in any order relative to each other.
type SubHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewSubHub creates a new subscription hub
func NewSubHub() *SubHub {
	return &SubHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new subscription connection for a user
func (h *SubHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existingConn, exists := h.connections[userID]; exists {
		existingConn.Close()
	}

	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("Subscription registered")
}

// Unregister removes the subscription connection for a user
func (h *SubHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("Subscription unregistered")
	}
}

// Publish sends an event to a user's subscription, if connected. Delivery is
// best effort: an offline user simply reloads snapshots on reconnect.
func (h *SubHub) Publish(userID string, event Event) {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to marshal event")
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("collection", event.Collection).
			Msg("Failed to publish event")
		h.Unregister(userID)
	}
}

// IsOnline checks if a user has an active subscription
func (h *SubHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}
