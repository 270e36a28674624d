package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npcgate/gateway/pkg/config"
	"npcgate/gateway/pkg/security/auth"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.Env = "test"
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Security.APIKey = "k-123"
	cfg.Limits.Rate = 100
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, quietLogger(), "test")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts
}

// attachWorker dials the worker endpoint and answers every task with a
// result derived from its type.
func attachWorker(t *testing.T, s *Server, ts *httptest.Server, apiKey string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ai-worker"
	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{auth.HeaderAPIKey: {apiKey}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.Eventually(t, s.Bridge().Connected, 2*time.Second, 10*time.Millisecond)

	go func() {
		for {
			_, frame, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var task struct {
				RequestID string          `json:"request_id"`
				Type      string          `json:"type"`
				Payload   json.RawMessage `json:"payload"`
			}
			if json.Unmarshal(frame, &task) != nil {
				continue
			}
			result := `{"label":"joy"}`
			if task.Type == "gpt" {
				result = `{"text":"echo"}`
			}
			reply := `{"request_id":"` + task.RequestID + `","result":` + result + `,"error":null}`
			if ws.WriteMessage(websocket.TextMessage, []byte(reply)) != nil {
				return
			}
		}
	}()
	return ws
}

func postDialog(t *testing.T, ts *httptest.Server, body string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+RouteDialogGenerate, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const dialogBody = `{"player_id":"p1","session_id":"s1","dialog_text":"hello"}`

func TestServer_DialogEndToEnd(t *testing.T) {
	s, ts := newTestServer(t, testConfig())
	attachWorker(t, s, ts, "k-123")

	resp := postDialog(t, ts, dialogBody, http.Header{auth.HeaderAPIKey: {"k-123"}, "X-Request-Id": {"rid-1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rid-1", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.JSONEq(t, `{"label":"joy"}`, string(out["emotion"]))
	assert.JSONEq(t, `{"text":"echo"}`, string(out["dialog"]))
	assert.JSONEq(t, `"rid-1"`, string(out["request_id"]))
	assert.JSONEq(t, `"api_key"`, string(out["auth"]))
}

func TestServer_NoWorker(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	resp := postDialog(t, ts, dialogBody, http.Header{auth.HeaderAPIKey: {"k-123"}})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ready, err := http.Get(ts.URL + RouteReady)
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, ready.StatusCode)
}

func TestServer_AuthRejections(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	resp := postDialog(t, ts, dialogBody, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postDialog(t, ts, dialogBody, http.Header{auth.HeaderAPIKey: {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp struct {
		Error struct {
			Type string `json:"type"`
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "authentication_error", errResp.Error.Type)
	assert.Equal(t, auth.CodeAPIKeyMismatch, errResp.Error.Code)
}

func TestServer_HMAC(t *testing.T) {
	cfg := testConfig()
	cfg.Security.HMAC.Secret = "topsecret"
	s, ts := newTestServer(t, cfg)
	attachWorker(t, s, ts, "k-123")

	ts64 := time.Now().Unix()
	sig := auth.SignHex("topsecret", ts64, "nonce-123", []byte(dialogBody))
	header := http.Header{
		auth.HeaderSignature: {sig},
		auth.HeaderTimestamp: {strconv.FormatInt(ts64, 10)},
		auth.HeaderNonce:     {"nonce-123"},
	}

	resp := postDialog(t, ts, dialogBody, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the API key alone is not accepted once HMAC is configured
	resp = postDialog(t, ts, dialogBody, http.Header{auth.HeaderAPIKey: {"k-123"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a tampered body fails verification
	resp = postDialog(t, ts, strings.Replace(dialogBody, "hello", "hellO", 1), header)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.Routes = map[string]config.RouteLimit{
		RouteDialogPing: {Rate: 1, Period: time.Hour},
	}
	_, ts := newTestServer(t, cfg)

	ping := func() *http.Response {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+RouteDialogPing, nil)
		req.Header.Set(auth.HeaderAPIKey, "k-123")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusOK, ping().StatusCode)
	second := ping()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))
}

func TestServer_Reload(t *testing.T) {
	cfg := testConfig()
	s, ts := newTestServer(t, cfg)

	next := testConfig()
	next.Env = "staging"
	next.Security.APIKey = "k-456"
	s.Reload(next)

	resp := postDialog(t, ts, dialogBody, http.Header{auth.HeaderAPIKey: {"k-123"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+RouteDialogPing, nil)
	req.Header.Set(auth.HeaderAPIKey, "k-456")
	pingResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer pingResp.Body.Close()

	body, _ := io.ReadAll(pingResp.Body)
	assert.Equal(t, http.StatusOK, pingResp.StatusCode)
	assert.Contains(t, string(body), `"env":"staging"`)

	// the worker endpoint picks up the new key as well
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ai-worker"
	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{auth.HeaderAPIKey: {"k-123"}})
	require.NoError(t, err)
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestServer_MetaHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	for path, want := range map[string]int{
		"/":            http.StatusOK,
		"/favicon.ico": http.StatusNoContent,
		RouteHealth:    http.StatusOK,
		"/metrics":     http.StatusOK,
		"/nope":        http.StatusNotFound,
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.Contains(body, []byte("gateway_bridge_worker_connected")))
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := New(testConfig(), quietLogger(), "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr() + RouteHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, s.IsRunning())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, s.IsRunning())
}
