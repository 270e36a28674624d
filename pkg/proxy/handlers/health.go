package handlers

import (
	"net/http"
	"time"

	"npcgate/gateway/pkg/proxy/types"
)

// HealthHandler handles liveness probes. It always answers 200.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler reports ready only while a worker is attached.
type ReadyHandler struct {
	Worker WorkerStatus
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(worker WorkerStatus) *ReadyHandler {
	return &ReadyHandler{Worker: worker}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connected := h.Worker.Connected()

	status := "ready"
	statusCode := http.StatusOK
	if !connected {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	types.WriteJSON(w, statusCode, map[string]any{
		"status": status,
		"worker": map[string]any{
			"connected": connected,
			"pending":   h.Worker.Pending(),
		},
		"timestamp": time.Now().Unix(),
	})
}

// MetaHandler describes the service at "/".
type MetaHandler struct {
	Name    string
	Version string
	Env     func() string
}

// ServeHTTP implements http.Handler.
func (h *MetaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	env := ""
	if h.Env != nil {
		env = h.Env()
	}
	types.WriteJSON(w, http.StatusOK, map[string]any{
		"service": h.Name,
		"version": h.Version,
		"env":     env,
		"endpoints": []string{
			"GET /healthz",
			"GET /readyz",
			"GET /v1/dialog/ping",
			"POST /v1/dialog/generate",
			"GET /ws/ai-worker",
		},
	})
}

// Favicon answers 204 so browsers stop asking.
func Favicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
