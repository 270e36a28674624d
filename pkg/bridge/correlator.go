package bridge

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// outcome is the terminal value delivered to a waiting caller.
type outcome struct {
	result json.RawMessage
	err    error
}

// PendingRequest is an outstanding task waiting for its reply.
//
// The waiter is a single-assignment cell: a channel with capacity one that
// receives exactly one value, written only by whoever removed the entry from
// the correlator table.
type PendingRequest struct {
	ID        string
	TaskType  TaskType
	CreatedAt time.Time
	Deadline  time.Time

	// conn is the connection the task was sent on. Only replies arriving on
	// this connection may resolve the request.
	conn Conn

	done chan outcome
}

func newPendingRequest(id string, taskType TaskType, conn Conn, now time.Time, timeout time.Duration) *PendingRequest {
	return &PendingRequest{
		ID:        id,
		TaskType:  taskType,
		CreatedAt: now,
		Deadline:  now.Add(timeout),
		conn:      conn,
		done:      make(chan outcome, 1),
	}
}

// deliver completes the waiter. Callers must own the entry, i.e. have removed
// it from the table under the correlator lock.
func (p *PendingRequest) deliver(o outcome) {
	p.done <- o
}

// Correlator owns the table of outstanding requests and matches inbound
// replies to waiting callers purely by request id.
//
// Insert, lookup and removal happen under a single mutex, so a request is
// removed by exactly one path: matching reply, timeout, submit-time
// rejection, or connection loss.
type Correlator struct {
	mu         sync.Mutex
	pending    map[string]*PendingRequest
	maxPending int
}

// NewCorrelator creates an empty correlator. maxPending <= 0 means unbounded.
func NewCorrelator(maxPending int) *Correlator {
	return &Correlator{
		pending:    make(map[string]*PendingRequest),
		maxPending: maxPending,
	}
}

// Register adds a pending request to the table.
func (c *Correlator) Register(p *PendingRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[p.ID]; exists {
		return fmt.Errorf("duplicate request id %q", p.ID)
	}
	if c.maxPending > 0 && len(c.pending) >= c.maxPending {
		return ErrTooManyPending
	}

	c.pending[p.ID] = p
	return nil
}

// Remove deletes the entry for id and reports whether it was still present.
// A false return means another path already claimed the request.
func (c *Correlator) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	return true
}

// Resolve matches a decoded reply that arrived on conn to its pending
// request. It returns false, without side effects, when the id is unknown,
// already resolved, or belongs to a different connection.
func (c *Correlator) Resolve(conn Conn, env *ResultEnvelope) bool {
	c.mu.Lock()
	p, ok := c.pending[env.RequestID]
	if !ok || p.conn != conn {
		c.mu.Unlock()
		return false
	}
	delete(c.pending, env.RequestID)
	c.mu.Unlock()

	if env.Failed() {
		p.deliver(outcome{err: &WorkerError{
			TaskType:  p.TaskType,
			RequestID: p.ID,
			Message:   *env.Error,
		}})
	} else {
		p.deliver(outcome{result: env.Result})
	}
	return true
}

// DiscardConn fails every request that was sent on conn with err and
// returns how many were discarded.
func (c *Correlator) DiscardConn(conn Conn, err error) int {
	c.mu.Lock()
	var owned []*PendingRequest
	for id, p := range c.pending {
		if p.conn == conn {
			owned = append(owned, p)
			delete(c.pending, id)
		}
	}
	c.mu.Unlock()

	for _, p := range owned {
		p.deliver(outcome{err: err})
	}
	return len(owned)
}

// DiscardAll fails every outstanding request with err.
func (c *Correlator) DiscardAll(err error) int {
	c.mu.Lock()
	owned := make([]*PendingRequest, 0, len(c.pending))
	for _, p := range c.pending {
		owned = append(owned, p)
	}
	c.pending = make(map[string]*PendingRequest)
	c.mu.Unlock()

	for _, p := range owned {
		p.deliver(outcome{err: err})
	}
	return len(owned)
}

// Len returns the number of outstanding requests.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Has reports whether id is outstanding.
func (c *Correlator) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}
