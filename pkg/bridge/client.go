package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultTimeout is used when Submit is called with a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// Config contains configuration for a Client.
type Config struct {
	// DefaultTimeout applies when Submit receives a zero timeout.
	// Default: 10s
	DefaultTimeout time.Duration

	// MaxPending bounds the outstanding request table (0 = unbounded).
	MaxPending int

	// Logger receives bridge logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Client is the bridge façade: callers submit a task and suspend until the
// worker's reply or the timeout, whichever comes first.
//
// A Client is an explicitly owned component. Create it once per process,
// hand it to the HTTP layer, and Close it on shutdown.
type Client struct {
	registry   *Registry
	correlator *Correlator

	defaultTimeout time.Duration
	logger         *slog.Logger
	metrics        *Metrics
	now            func() time.Time
	newID          func() string

	// malformedLog throttles warnings for undecodable frames.
	malformedLog rate.Sometimes

	closed atomic.Bool
}

// NewClient creates a bridge client with no worker connected.
func NewClient(cfg Config) *Client {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}

	return &Client{
		registry:       NewRegistry(),
		correlator:     NewCorrelator(cfg.MaxPending),
		defaultTimeout: cfg.DefaultTimeout,
		logger:         cfg.Logger.With("component", "bridge"),
		metrics:        cfg.Metrics,
		now:            cfg.Now,
		newID:          cfg.NewID,
		malformedLog:   rate.Sometimes{First: 5, Interval: 10 * time.Second},
	}
}

// Connect registers conn as the active worker connection, replacing any
// prior one. Requests still waiting on the replaced connection are failed
// with ErrConnectionLost and the replaced connection is closed.
func (c *Client) Connect(conn Conn) {
	previous := c.registry.Connect(conn)
	c.metrics.setConnected(true)
	c.logger.Info("AI worker connected")

	if previous == nil || previous == conn {
		return
	}

	c.metrics.recordReplacement()
	discarded := c.correlator.DiscardConn(previous, ErrConnectionLost)
	c.metrics.setPending(c.correlator.Len())
	c.logger.Warn("AI worker connection replaced",
		"discarded_requests", discarded,
	)
	if err := previous.Close(); err != nil {
		c.logger.Debug("closing replaced worker connection failed", "error", err)
	}
}

// Disconnect unregisters conn if, and only if, it is the active connection.
// Requests sent on conn are failed with ErrConnectionLost either way, since
// no further replies can arrive on it.
func (c *Client) Disconnect(conn Conn) bool {
	cleared := c.registry.Disconnect(conn)
	discarded := c.correlator.DiscardConn(conn, ErrConnectionLost)
	c.metrics.setPending(c.correlator.Len())

	if cleared {
		c.metrics.setConnected(false)
		c.logger.Info("AI worker disconnected", "discarded_requests", discarded)
	} else {
		c.logger.Debug("ignoring disconnect of superseded worker connection")
	}
	return cleared
}

// Connected reports whether a worker connection is active.
func (c *Client) Connected() bool {
	return c.registry.Connected()
}

// Pending returns the number of requests waiting for a reply.
func (c *Client) Pending() int {
	return c.correlator.Len()
}

// Submit sends a task to the worker and waits for its reply.
//
// It fails immediately with ErrNoWorker when no connection is active. The
// returned error is a *WorkerError when the worker rejected the task, a
// *TimeoutError when no reply arrived in time, or ErrConnectionLost when the
// connection went away. Cancelling ctx abandons the wait.
func (c *Client) Submit(ctx context.Context, taskType TaskType, payload any, timeout time.Duration) (json.RawMessage, error) {
	start := c.now()

	if c.closed.Load() {
		return nil, ErrClosed
	}
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	h := c.registry.current()
	if h == nil {
		c.metrics.recordSubmit(taskType, "no_worker", 0)
		return nil, ErrNoWorker
	}

	id := c.newID()
	msg, err := EncodeTask(id, taskType, payload)
	if err != nil {
		return nil, err
	}

	p := newPendingRequest(id, taskType, h.conn, start, timeout)
	if err := c.correlator.Register(p); err != nil {
		c.metrics.recordSubmit(taskType, "rejected", 0)
		return nil, err
	}
	c.metrics.setPending(c.correlator.Len())

	result, err := c.wait(ctx, h, p, msg, timeout)

	c.metrics.setPending(c.correlator.Len())
	c.metrics.recordSubmit(taskType, outcomeLabel(err), c.now().Sub(start))
	return result, err
}

// wait sends msg and blocks until the request reaches its terminal outcome.
// Whichever path removes p from the correlator owns the outcome; a path that
// loses the race reads the winner's value from the waiter instead.
func (c *Client) wait(ctx context.Context, h *handle, p *PendingRequest, msg []byte, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := h.send(ctx, msg); err != nil {
		if c.correlator.Remove(p.ID) {
			return nil, fmt.Errorf("failed to send %s task: %w", p.TaskType, err)
		}
		o := <-p.done
		return o.result, o.err
	}

	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		if !c.correlator.Remove(p.ID) {
			o := <-p.done
			return o.result, o.err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{TaskType: p.TaskType, RequestID: p.ID, Timeout: timeout}
		}
		return nil, ctx.Err()
	}
}

// HandleFrame processes one inbound frame received on conn. Malformed frames
// are logged and dropped; replies that match nothing are discarded. It never
// returns an error so the caller's read loop keeps running.
func (c *Client) HandleFrame(conn Conn, frame []byte) {
	env, err := DecodeResult(frame)
	if err != nil {
		c.metrics.recordMalformed()
		c.malformedLog.Do(func() {
			c.logger.Warn("dropping malformed worker message",
				"error", err,
				"size", len(frame),
			)
		})
		return
	}

	if !c.correlator.Resolve(conn, env) {
		c.metrics.recordUnmatched()
		c.logger.Debug("discarding unmatched worker reply", "worker_request_id", env.RequestID)
		return
	}
	c.metrics.setPending(c.correlator.Len())
}

// Close fails all outstanding requests with ErrClosed and closes the active
// connection. Submit returns ErrClosed afterwards.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	discarded := c.correlator.DiscardAll(ErrClosed)
	c.metrics.setPending(0)

	h := c.registry.current()
	if h == nil {
		return nil
	}
	c.registry.Disconnect(h.conn)
	c.metrics.setConnected(false)
	c.logger.Info("bridge closed", "discarded_requests", discarded)
	return h.conn.Close()
}

func outcomeLabel(err error) string {
	var workerErr *WorkerError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRequestTimeout):
		return "timeout"
	case errors.As(err, &workerErr):
		return "worker_error"
	case errors.Is(err, ErrConnectionLost), errors.Is(err, ErrClosed):
		return "connection_lost"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "send_failed"
	}
}
