package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	// The dashboard may be served from another origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected dashboard session.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades the request and starts the client pumps. On connect the
// client immediately receives the current running state.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	c := &Client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.register(c)

	c.enqueue(frame{Event: "status", Data: map[string]bool{"running": h.store.Running()}})

	go c.writePump()
	go c.readPump()
}

// enqueue queues one frame for this client only.
func (c *Client) enqueue(f frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// readPump consumes client messages until the connection drops, then
// unregisters. Unregistering happens here and nowhere else, so enqueue
// from this goroutine never races the channel close.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg []byte) {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return
	}

	switch envelope.Event {
	case "request_stats":
		stats := c.hub.store.Stats()
		c.enqueue(frame{Event: "stats_update", Data: map[string]interface{}{
			"cores": stats.Cores,
			"stats": stats.Stats,
		}})
	}
}

// writePump drains the send channel onto the wire.
func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	// Send channel closed by the hub; say goodbye.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
