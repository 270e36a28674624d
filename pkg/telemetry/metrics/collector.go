package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector owns the gateway's Prometheus registry. Component metrics
// (bridge, auth, ratelimit) register against Registry(); the collector
// itself records per-route HTTP traffic.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewCollector creates a collector on a fresh registry with the Go runtime
// and process collectors installed.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newCollector(registry)
}

func newCollector(registry *prometheus.Registry) *Collector {
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "gateway_http_request_duration_seconds",
				Help: "HTTP request latency by route",
				// dialog generation spans two worker round trips
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
			},
			[]string{"route"},
		),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// Registry returns the registry component metrics should register with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records one completed request.
func (c *Collector) RecordRequest(route string, code int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
