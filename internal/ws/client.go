package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps a websocket connection with a write mutex. The hub's
// broadcast goroutine and the channel's own reader (answering pings) both
// write to the connection, and gorilla/websocket permits only one
// concurrent writer.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// WriteJSON sends v as a JSON frame.
func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// ReadMessage blocks until the next frame from the client.
func (c *Client) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
