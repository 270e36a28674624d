// Package telemetry groups the gateway's observability packages.
//
//   - logging: slog construction, request-scoped attributes and credential redaction
//   - metrics: Prometheus registry, HTTP instrumentation and the /metrics handler
//
// Bridge, auth and rate-limit collectors live next to the code they measure and
// register against the registry exposed by metrics.Collector.
package telemetry
