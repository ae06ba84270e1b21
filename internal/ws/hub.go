// Package ws streams task change events to the owning user's websocket
// connections.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskdesk/internal/models"
	"taskdesk/pkg/logger"
)

// Event is what subscribers receive for each change to one of their tasks.
type Event struct {
	Action string       `json:"action"` // created, updated, deleted
	Task   *models.Task `json:"task"`
}

// Conn is the part of the websocket connection the hub uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one websocket connection, bound to the authenticated owner.
type Client struct {
	OwnerID int
	Conn    Conn
	mu      sync.Mutex
}

func (c *Client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, message)
}

type ownerEvent struct {
	ownerID int
	payload []byte
}

// Hub fans task events out to the connections of the task's owner. All state
// is confined to the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	events     chan ownerEvent
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan ownerEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish queues an event for ownerID's connections. It never blocks the
// request path: if the hub is backed up the event is dropped.
func (h *Hub) Publish(ownerID int, action string, task *models.Task) {
	payload, err := json.Marshal(Event{Action: action, Task: task})
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case h.events <- ownerEvent{ownerID: ownerID, payload: payload}:
	default:
		logger.ErrorLogger.Error("Task event dropped, hub backlog full",
			zap.Int("owner_id", ownerID))
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
		case event := <-h.events:
			for client := range h.clients {
				if client.OwnerID != event.ownerID {
					continue
				}
				if err := client.write(event.payload); err != nil {
					delete(h.clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
