// Package metrics exposes the gateway's Prometheus registry and per-route
// HTTP metrics.
//
// Exposed series (beyond the Go runtime and process collectors):
//
//	gateway_http_requests_total{route,code}
//	gateway_http_request_duration_seconds{route}
//	gateway_http_requests_in_flight
//
// The bridge, auth and ratelimit packages register their own collectors
// against Collector.Registry().
//
// Example:
//
//	collector := metrics.NewCollector()
//	client := bridge.NewClient(bridge.Config{Metrics: bridge.NewMetrics(collector.Registry())})
//	mux.Handle("GET /metrics", collector.Handler())
//	mux.Handle("GET /readyz", collector.Instrument("readyz", ready))
package metrics
