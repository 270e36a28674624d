package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"npcgate/gateway/pkg/telemetry/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// simulate the auth middleware deriving a new context
		ctx := logging.WithAuthMethod(logging.WithPrincipal(r.Context(), "api_key"), "api_key")
		_ = r.WithContext(ctx)
		w.WriteHeader(http.StatusTeapot)
	})

	wrapped := RequestIDMiddleware(LoggingMiddleware(logger)(handler))

	req := httptest.NewRequest(http.MethodPost, "/v1/dialog/generate", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON log line, got %q: %v", buf.String(), err)
	}

	want := map[string]any{
		"msg":         "request completed",
		"level":       "WARN",
		"method":      "POST",
		"path":        "/v1/dialog/generate",
		"status":      float64(http.StatusTeapot),
		"request_id":  "req-7",
		"principal":   "api_key",
		"auth_method": "api_key",
	}
	for k, v := range want {
		if record[k] != v {
			t.Errorf("%s = %v, want %v", k, record[k], v)
		}
	}
}

func TestResponseWriter_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	_, _ = rw.Write([]byte("hi"))
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("Unwrap should return the underlying writer")
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected an error from a recorder that cannot hijack")
	}
}
