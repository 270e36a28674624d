package ratelimit

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		principal, route, remote, want string
	}{
		{"hmac", "/v1/dialog/ping", "10.0.0.1:5000", "hmac:/v1/dialog/ping"},
		{"api_key", "/v1/dialog/generate", "10.0.0.1:5000", "api_key:/v1/dialog/generate"},
		{"anonymous", "/v1/dialog/ping", "10.0.0.1:5000", "10.0.0.1:/v1/dialog/ping"},
		{"", "/v1/dialog/ping", "[::1]:5000", "::1:/v1/dialog/ping"},
		{"anonymous", "/x", "", "unknown:/x"},
		{"anonymous", "/x", "no-port", "no-port:/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.principal, tt.route, tt.remote))
	}
}

func TestLimiter_RouteOverrides(t *testing.T) {
	clock := newFakeClock(1700000040)
	l := NewLimiter(Config{
		Default: Policy{Rate: 1, Period: time.Minute},
		Routes: map[string]Policy{
			"/v1/dialog/ping": {Rate: 3, Period: time.Minute},
		},
	}, clock.Now, nil)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Check("hmac", "/v1/dialog/ping", "").Allowed)
	}
	assert.False(t, l.Check("hmac", "/v1/dialog/ping", "").Allowed)

	assert.True(t, l.Check("hmac", "/v1/dialog/generate", "").Allowed)
	assert.False(t, l.Check("hmac", "/v1/dialog/generate", "").Allowed)
}

func TestLimiter_AnonymousByAddress(t *testing.T) {
	l := NewLimiter(Config{Default: Policy{Rate: 1, Period: time.Minute}}, newFakeClock(1700000040).Now, nil)

	assert.True(t, l.Check("anonymous", "/r", "10.0.0.1:1").Allowed)
	assert.False(t, l.Check("anonymous", "/r", "10.0.0.1:2").Allowed)
	assert.True(t, l.Check("anonymous", "/r", "10.0.0.2:1").Allowed)
}

func TestLimiter_UpdateKeepsCounters(t *testing.T) {
	l := NewLimiter(Config{Default: Policy{Rate: 2, Period: time.Minute}}, newFakeClock(1700000040).Now, nil)
	l.Check("p", "/r", "")
	l.Check("p", "/r", "")

	l.Update(Config{Default: Policy{Rate: 3, Period: time.Minute}})
	assert.Equal(t, 3, l.PolicyFor("/r").Rate)
	assert.True(t, l.Check("p", "/r", "").Allowed)
	assert.False(t, l.Check("p", "/r", "").Allowed)
}

func TestLimiter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	clock := newFakeClock(1700000040)
	l := NewLimiter(Config{Default: Policy{Rate: 1, Period: time.Minute}}, clock.Now, m)

	l.Check("p", "/r", "")
	l.Check("p", "/r", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("/r", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("/r", "rejected")))

	clock.Set(1700000100)
	assert.Equal(t, 1, l.Prune())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.windows))
}

func TestPruneScheduler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := NewLimiter(Config{Default: Policy{Rate: 1, Period: time.Second}}, nil, nil)

	s := NewPruneScheduler(l, "@every 1s", logger)
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start())

	l.Check("p", "/r", "")
	assert.Eventually(t, func() bool { return l.Windows().Len() == 0 }, 5*time.Second, 50*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	bad := NewPruneScheduler(l, "not a schedule", logger)
	assert.Error(t, bad.Start())
}
