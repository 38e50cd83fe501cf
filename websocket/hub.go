package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channels a client can subscribe to. Every client gets broadcast and its
// own user channel; admins additionally get the admin channel.
const (
	ChannelAdmin     = "admin"
	ChannelBroadcast = "broadcast"
)

// UserChannel names the private channel of one member.
func UserChannel(userID primitive.ObjectID) string {
	return "user:" + userID.Hex()
}

// Event is the envelope for every message sent over WebSocket
type Event struct {
	Event   string      `json:"event"`
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload,omitempty"`
	SentAt  time.Time   `json:"sentAt"`
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers an event to every client subscribed to the channel.
// Delivery is best-effort: a slow consumer's full queue drops the event and
// an unconnected target simply isn't in the client set. Publish never blocks.
func (h *Hub) Publish(channel, event string, payload interface{}) {
	data, err := json.Marshal(Event{
		Event:   event,
		Channel: channel,
		Payload: payload,
		SentAt:  time.Now(),
	})
	if err != nil {
		log.Printf("websocket: failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.channels[channel] {
			continue
		}
		select {
		case client.send <- data:
		default:
			log.Printf("websocket: dropping %s event for slow client %s", event, client.userID.Hex())
		}
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
