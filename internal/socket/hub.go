package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub manages all connected WebSocket clients. Clients are keyed by a
// generated connection id, not by user, so one user may hold several tabs.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.Mutex
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		log:     log,
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientID] = conn
	h.log.Info("websocket client registered", zap.String("client_id", clientID))
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[clientID]; ok {
		delete(h.clients, clientID)
		h.log.Info("websocket client unregistered", zap.String("client_id", clientID))
	}
}

// envelope wraps an event with its topic for the wire.
type envelope struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

// Publish broadcasts an event to every connected client. Delivery is
// best-effort: a dead connection is logged, never an error to the caller.
// The write lock is required, not just a read lock: services publish from
// concurrent goroutines and a websocket connection allows only one writer
// at a time.
func (h *Hub) Publish(topic string, data interface{}) {
	payload, err := json.Marshal(envelope{Topic: topic, Data: data})
	if err != nil {
		h.log.Error("failed to marshal websocket event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for clientID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn("failed to push event to websocket client",
				zap.String("client_id", clientID), zap.Error(err))
		}
	}
}
