package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticWorker struct {
	connected bool
	pending   int
}

func (s staticWorker) Connected() bool { return s.connected }
func (s staticWorker) Pending() int    { return s.pending }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name       string
		worker     staticWorker
		wantStatus int
		wantBody   string
	}{
		{name: "no worker", worker: staticWorker{}, wantStatus: http.StatusServiceUnavailable, wantBody: "not_ready"},
		{name: "worker attached", worker: staticWorker{connected: true, pending: 2}, wantStatus: http.StatusOK, wantBody: "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewReadyHandler(tt.worker).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestMetaHandlerAndFavicon(t *testing.T) {
	h := &MetaHandler{Name: "npc-gateway", Version: "1.2.3", Env: func() string { return "dev" }}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"npc-gateway"`)
	assert.Contains(t, w.Body.String(), `"env":"dev"`)

	w = httptest.NewRecorder()
	Favicon(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
