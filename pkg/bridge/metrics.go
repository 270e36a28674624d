package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for the bridge. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	submits         *prometheus.CounterVec
	inFlight        prometheus.Gauge
	latency         *prometheus.HistogramVec
	malformed       prometheus.Counter
	unmatched       prometheus.Counter
	workerConnected prometheus.Gauge
	replacements    prometheus.Counter
}

// NewMetrics registers the bridge collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_bridge_submits_total",
				Help: "Total number of tasks submitted to the worker, by outcome",
			},
			[]string{"type", "outcome"},
		),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_bridge_pending_requests",
			Help: "Number of requests waiting for a worker reply",
		}),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_bridge_request_duration_seconds",
				Help:    "Time from submit to terminal outcome",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"type"},
		),
		malformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_bridge_malformed_frames_total",
			Help: "Inbound worker frames that could not be decoded",
		}),
		unmatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_bridge_unmatched_replies_total",
			Help: "Replies discarded because no pending request matched",
		}),
		workerConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_bridge_worker_connected",
			Help: "1 if a worker connection is registered",
		}),
		replacements: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_bridge_connection_replacements_total",
			Help: "Worker connections replaced by a newer connection",
		}),
	}
}

func (m *Metrics) recordSubmit(taskType TaskType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submits.WithLabelValues(string(taskType), outcome).Inc()
	m.latency.WithLabelValues(string(taskType)).Observe(elapsed.Seconds())
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}

func (m *Metrics) recordMalformed() {
	if m == nil {
		return
	}
	m.malformed.Inc()
}

func (m *Metrics) recordUnmatched() {
	if m == nil {
		return
	}
	m.unmatched.Inc()
}

func (m *Metrics) setConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.workerConnected.Set(1)
	} else {
		m.workerConnected.Set(0)
	}
}

func (m *Metrics) recordReplacement() {
	if m == nil {
		return
	}
	m.replacements.Inc()
}
