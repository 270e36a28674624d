package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json", config: Config{Level: "info", Format: "json"}},
		{name: "text", config: Config{Level: "debug", Format: "text"}},
		{name: "console maps to text", config: Config{Level: "WARN", Format: "console"}},
		{name: "defaults", config: Config{}},
		{name: "invalid level", config: Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextHandler_AddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithPrincipal(ctx, "hmac")
	ctx = WithAuthMethod(ctx, "hmac")
	logger.With("component", "test").InfoContext(ctx, "handled")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, "hmac", record["principal"])
	assert.Equal(t, "hmac", record["auth_method"])
	assert.Equal(t, "test", record["component"])
}

func TestContextHandler_NoFieldsWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestRedactSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", RedactSecrets: true, Writer: &buf})
	require.NoError(t, err)

	logger.Info("config loaded",
		"api_key", "k-123456",
		"hmac_secret", "topsecret",
		"header", "Bearer abc.def",
		"auth_method", "api_key",
	)

	out := buf.String()
	assert.NotContains(t, out, "k-123456")
	assert.NotContains(t, out, "topsecret")
	assert.NotContains(t, out, "abc.def")
	assert.True(t, strings.Contains(out, `"auth_method":"api_key"`))
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetPrincipal(ctx))
	assert.Empty(t, GetAuthMethod(ctx))
}

func TestRequestScope_VisibleToOuterContext(t *testing.T) {
	outer := WithRequestScope(WithRequestID(context.Background(), "req-1"))
	assert.Empty(t, GetPrincipal(outer))

	inner := WithAuthMethod(WithPrincipal(outer, "api_key"), "api_key")
	assert.Equal(t, "api_key", GetPrincipal(inner))

	assert.Equal(t, "api_key", GetPrincipal(outer))
	assert.Equal(t, "api_key", GetAuthMethod(outer))
	assert.Equal(t, "req-1", GetRequestID(outer))
}
