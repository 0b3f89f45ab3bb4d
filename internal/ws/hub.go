// Package ws pushes captured kernel events to dashboard clients over
// WebSocket. The wire format is {"event": <name>, "data": <payload>}.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/PiusTetteh/301-GroupProject/internal/events"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

// frame is the envelope for every message pushed to a client.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans events out to all connected clients. It implements events.Sink:
// Publish never blocks, a client with a full send buffer drops the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	store   *state.Store
}

func NewHub(store *state.Store) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		store:   store,
	}
}

// Publish broadcasts one captured event to every client.
func (h *Hub) Publish(ev events.Event) {
	h.broadcast(frame{Event: ev.Name(), Data: ev})
}

func (h *Hub) broadcast(f frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow client, drop the frame rather than stall the pipeline.
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// unregister removes the client and closes its send channel. Holding the
// write lock here excludes broadcast, so the channel is never closed under
// a concurrent send.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
