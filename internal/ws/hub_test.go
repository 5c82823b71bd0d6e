package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeConn records writes and can be told to fail.
type fakeConn struct {
	mu     sync.Mutex
	got    []interface{}
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.got = append(f.got, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	c := &fakeConn{}

	h.Register(c)
	assert.Equal(t, 1, h.Count())

	h.Unregister(c)
	assert.Equal(t, 0, h.Count())

	// Unregistering an unknown channel is a no-op.
	h.Unregister(c)
	assert.Equal(t, 0, h.Count())
}

func TestHubBroadcastReachesAll(t *testing.T) {
	h := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	h.Register(a)
	h.Register(b)

	h.Broadcast(map[string]string{"type": "booking_created"})

	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
}

func TestHubBroadcastDropsDeadChannel(t *testing.T) {
	h := NewHub()
	live := &fakeConn{}
	dead := &fakeConn{fail: true}
	h.Register(live)
	h.Register(dead)

	h.Broadcast(map[string]string{"type": "booking_updated"})

	// The dead channel is closed and removed; the live one still gets the
	// message and stays registered.
	assert.Equal(t, 1, live.received())
	assert.Equal(t, 1, h.Count())
	assert.True(t, dead.closed)

	h.Broadcast(map[string]string{"type": "booking_updated"})
	assert.Equal(t, 2, live.received())
}

func TestHubConcurrentBroadcastAndRegister(t *testing.T) {
	h := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			h.Register(c)
			h.Unregister(c)
		}()
		go func() {
			defer wg.Done()
			h.Broadcast(map[string]string{"type": "emergency_alert"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Count())
}
