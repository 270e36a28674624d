package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for rate limiting. A nil *Metrics
// records nothing.
type Metrics struct {
	checks  *prometheus.CounterVec
	windows prometheus.Gauge
}

// NewMetrics registers the rate limit collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_ratelimit_checks_total",
				Help: "Total number of rate limit checks performed",
			},
			[]string{"route", "result"},
		),
		windows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_ratelimit_tracked_keys",
			Help: "Number of keys with a live rate window after the last prune",
		}),
	}
}

func (m *Metrics) recordCheck(route string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	m.checks.WithLabelValues(route, result).Inc()
}

func (m *Metrics) setWindows(n int) {
	if m == nil {
		return
	}
	m.windows.Set(float64(n))
}
