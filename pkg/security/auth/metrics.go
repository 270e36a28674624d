package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts authentication decisions. A nil *Metrics records nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the auth collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_auth_decisions_total",
				Help: "Authentication decisions by method and result code",
			},
			[]string{"method", "result"},
		),
	}
}

func (m *Metrics) recordDecision(method Method, err error) {
	if m == nil {
		return
	}
	result := "accepted"
	if err != nil {
		result = CodeOf(err)
	}
	m.decisions.WithLabelValues(string(method), result).Inc()
}
