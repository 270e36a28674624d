package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(id string, conn Conn) *PendingRequest {
	return newPendingRequest(id, TaskEmotion, conn, time.Unix(1700000000, 0), time.Second)
}

func TestCorrelator_Register(t *testing.T) {
	c := NewCorrelator(2)
	conn := newFakeConn()

	require.NoError(t, c.Register(pending("a", conn)))
	assert.Error(t, c.Register(pending("a", conn)), "duplicate id")
	require.NoError(t, c.Register(pending("b", conn)))
	assert.ErrorIs(t, c.Register(pending("c", conn)), ErrTooManyPending)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("c"))
}

func TestCorrelator_ResolveOnce(t *testing.T) {
	c := NewCorrelator(0)
	conn := newFakeConn()
	p := pending("a", conn)
	require.NoError(t, c.Register(p))

	env := &ResultEnvelope{RequestID: "a", Result: json.RawMessage(`{"ok":1}`)}
	assert.True(t, c.Resolve(conn, env))
	assert.False(t, c.Resolve(conn, env))
	assert.False(t, c.Remove("a"))

	o := <-p.done
	require.NoError(t, o.err)
	assert.JSONEq(t, `{"ok":1}`, string(o.result))
}

func TestCorrelator_ResolveWorkerError(t *testing.T) {
	c := NewCorrelator(0)
	conn := newFakeConn()
	p := pending("a", conn)
	require.NoError(t, c.Register(p))

	msg := "model crashed"
	assert.True(t, c.Resolve(conn, &ResultEnvelope{RequestID: "a", Error: &msg}))

	o := <-p.done
	var workerErr *WorkerError
	require.ErrorAs(t, o.err, &workerErr)
	assert.Equal(t, "model crashed", workerErr.Message)
	assert.Equal(t, "a", workerErr.RequestID)
}

func TestCorrelator_ResolveWrongConn(t *testing.T) {
	c := NewCorrelator(0)
	connA := newFakeConn()
	connB := newFakeConn()
	require.NoError(t, c.Register(pending("a", connA)))

	assert.False(t, c.Resolve(connB, &ResultEnvelope{RequestID: "a"}))
	assert.True(t, c.Has("a"))
}

func TestCorrelator_DiscardConn(t *testing.T) {
	c := NewCorrelator(0)
	connA := newFakeConn()
	connB := newFakeConn()

	a1, a2, b1 := pending("a1", connA), pending("a2", connA), pending("b1", connB)
	for _, p := range []*PendingRequest{a1, a2, b1} {
		require.NoError(t, c.Register(p))
	}

	assert.Equal(t, 2, c.DiscardConn(connA, ErrConnectionLost))
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("b1"))

	for _, p := range []*PendingRequest{a1, a2} {
		o := <-p.done
		assert.ErrorIs(t, o.err, ErrConnectionLost)
	}

	assert.Equal(t, 1, c.DiscardAll(ErrClosed))
	assert.ErrorIs(t, (<-b1.done).err, ErrClosed)
	assert.Equal(t, 0, c.Len())
}
