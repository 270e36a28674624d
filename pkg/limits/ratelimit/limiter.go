package ratelimit

import (
	"sync/atomic"
	"time"
)

// Config contains the default policy and per-route overrides.
type Config struct {
	// Default applies to routes without an override.
	Default Policy

	// Routes maps a route path to its policy.
	Routes map[string]Policy
}

// Limiter applies route policies to a shared FixedWindow.
//
// The policy table can be replaced at runtime with Update; counters are kept.
type Limiter struct {
	windows *FixedWindow
	config  atomic.Pointer[Config]
	metrics *Metrics
}

// NewLimiter creates a limiter for cfg.
func NewLimiter(cfg Config, now func() time.Time, metrics *Metrics) *Limiter {
	l := &Limiter{
		windows: NewFixedWindow(now),
		metrics: metrics,
	}
	l.Update(cfg)
	return l
}

// Update replaces the policy table.
func (l *Limiter) Update(cfg Config) {
	routes := make(map[string]Policy, len(cfg.Routes))
	for route, p := range cfg.Routes {
		routes[route] = p
	}
	cfg.Routes = routes
	l.config.Store(&cfg)
}

// PolicyFor returns the policy in force for route.
func (l *Limiter) PolicyFor(route string) Policy {
	cfg := l.config.Load()
	if p, ok := cfg.Routes[route]; ok {
		return p
	}
	return cfg.Default
}

// Check counts one request from principal on route.
func (l *Limiter) Check(principal, route, remoteAddr string) Result {
	res := l.windows.Check(Key(principal, route, remoteAddr), l.PolicyFor(route))
	l.metrics.recordCheck(route, res.Allowed)
	return res
}

// Prune drops expired windows.
func (l *Limiter) Prune() int {
	n := l.windows.Prune()
	l.metrics.setWindows(l.windows.Len())
	return n
}

// Windows exposes the underlying counters.
func (l *Limiter) Windows() *FixedWindow {
	return l.windows
}
