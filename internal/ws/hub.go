// Package ws tracks open live push channels and broadcasts booking
// lifecycle events to all of them.
package ws

import (
	"log"
	"sync"
)

// Conn is the minimal surface the hub needs from a live channel. It is
// satisfied by *Client and by in-memory fakes in tests.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub is the registry of open channels. It is shared mutable state
// touched by every channel's goroutine and by every mutating booking
// operation, so all access goes through the mutex. Broadcast works on a
// snapshot, so channels may register or drop while a broadcast is in
// flight.
type Hub struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
}

// NewHub returns an empty registry.
func NewHub() *Hub {
	return &Hub{conns: make(map[Conn]struct{})}
}

// Register adds a channel to the registry.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a channel. Removing a channel that is not
// registered is a no-op.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Count returns the number of open channels.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast sends the message to every registered channel. A channel
// whose send fails is treated as dead: it is closed, removed from the
// registry, and delivery continues to the remaining channels.
func (h *Hub) Broadcast(v interface{}) {
	h.mu.Lock()
	snapshot := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	for _, c := range snapshot {
		if err := c.WriteJSON(v); err != nil {
			log.Printf("ws: dropping dead channel: %v", err)
			h.Unregister(c)
			_ = c.Close()
		}
	}
}
