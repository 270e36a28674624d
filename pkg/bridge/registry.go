package bridge

import (
	"context"
	"sync"
)

// Conn is a duplex connection to the worker. Implementations need not be
// safe for concurrent writers; the registry serializes Send calls.
type Conn interface {
	// Send writes one complete text message.
	Send(ctx context.Context, msg []byte) error

	// Close tears the connection down.
	Close() error
}

// handle pairs a connection with the lock that serializes its writes.
type handle struct {
	conn    Conn
	writeMu sync.Mutex
}

// send writes msg as one logical message; concurrent senders queue on writeMu.
func (h *handle) send(ctx context.Context, msg []byte) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return h.conn.Send(ctx, msg)
}

// Registry holds at most one live worker connection.
type Registry struct {
	mu     sync.RWMutex
	active *handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Connect registers conn unconditionally and returns the connection it
// replaced, if any.
func (r *Registry) Connect(conn Conn) (previous Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		previous = r.active.conn
	}
	r.active = &handle{conn: conn}
	return previous
}

// Disconnect clears the registry only if conn is the registered connection.
// It reports whether the registry was cleared; a stale disconnect from a
// superseded connection is a no-op.
func (r *Registry) Disconnect(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.conn != conn {
		return false
	}
	r.active = nil
	return true
}

// current returns the registered connection's handle, or nil.
func (r *Registry) current() *handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Connected reports whether a worker is registered.
func (r *Registry) Connected() bool {
	return r.current() != nil
}

// IsActive reports whether conn is the registered connection.
func (r *Registry) IsActive(conn Conn) bool {
	h := r.current()
	return h != nil && h.conn == conn
}
