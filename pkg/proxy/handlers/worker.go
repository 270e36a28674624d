package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"npcgate/gateway/pkg/security/auth"
)

// WorkerConfig tunes the worker websocket.
type WorkerConfig struct {
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PingInterval is how often the gateway pings the worker.
	PingInterval time.Duration

	// PongTimeout is how long the connection may stay silent before it is
	// considered dead. Must exceed PingInterval.
	PongTimeout time.Duration

	// MaxMessageBytes caps a single inbound frame.
	MaxMessageBytes int64
}

// WorkerHandler accepts the AI worker's websocket at /ws/ai-worker and
// attaches it to the bridge.
type WorkerHandler struct {
	bridge   WorkerBridge
	apiKey   func() string
	cfg      WorkerConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWorkerHandler creates the worker endpoint. apiKey is consulted on every
// connection attempt so reloaded keys take effect; an empty key admits any
// worker.
func NewWorkerHandler(b WorkerBridge, apiKey func() string, cfg WorkerConfig, logger *slog.Logger) *WorkerHandler {
	if apiKey == nil {
		apiKey = func() string { return "" }
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongTimeout <= cfg.PingInterval {
		cfg.PongTimeout = 2 * cfg.PingInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkerHandler{
		bridge: b,
		apiKey: apiKey,
		cfg:    cfg,
		logger: logger.With("component", "worker_ws"),
		upgrader: websocket.Upgrader{
			// the worker is a local process, not a browser
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the read loop until the socket
// closes.
func (h *WorkerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "worker websocket upgrade failed", "error", err)
		return
	}

	if !auth.CheckAPIKey(h.apiKey(), r.Header) {
		h.logger.WarnContext(r.Context(), "rejecting worker with invalid api key", "remote_addr", r.RemoteAddr)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid api key")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteTimeout))
		_ = ws.Close()
		return
	}

	conn := newWSConn(ws, h.cfg.WriteTimeout)
	h.bridge.Connect(conn)
	defer h.bridge.Disconnect(conn)

	h.logger.InfoContext(r.Context(), "worker attached", "remote_addr", r.RemoteAddr)

	done := make(chan struct{})
	defer close(done)
	go h.keepalive(ws, done)

	h.readLoop(r.Context(), ws, conn)
}

func (h *WorkerHandler) readLoop(ctx context.Context, ws *websocket.Conn, conn *wsConn) {
	if h.cfg.MaxMessageBytes > 0 {
		ws.SetReadLimit(h.cfg.MaxMessageBytes)
	}
	extend := func() {
		_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	}
	extend()
	ws.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		kind, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WarnContext(ctx, "worker websocket closed", "error", err)
			} else {
				h.logger.DebugContext(ctx, "worker websocket closed", "error", err)
			}
			return
		}
		extend()

		if kind != websocket.TextMessage {
			h.logger.DebugContext(ctx, "ignoring non-text worker frame", "type", kind)
			continue
		}
		h.bridge.HandleFrame(conn, frame)
	}
}

func (h *WorkerHandler) keepalive(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.logger.Debug("worker ping failed", "error", err)
				return
			}
		}
	}
}

// wsConn adapts a gorilla websocket to bridge.Conn. The bridge serializes
// Send calls; pings go through WriteControl, which may run concurrently.
type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{ws: ws, writeTimeout: writeTimeout}
}

// Send writes msg as one text frame.
func (c *wsConn) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, msg)
}

// Close closes the underlying socket.
func (c *wsConn) Close() error {
	return c.ws.Close()
}
