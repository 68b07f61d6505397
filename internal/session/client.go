package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"codesync/internal/models"
)

// Client wraps one websocket connection. The transport assigns the id
// at upgrade time; it is the connection's identity for its whole life.
// Writes are serialized because gorilla connections do not allow
// concurrent writers.
type Client struct {
	ID   string
	Conn *websocket.Conn
	mu   sync.Mutex
	hook func(models.WSFrame)
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}
