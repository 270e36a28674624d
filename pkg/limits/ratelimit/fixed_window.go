package ratelimit

import (
	"sync"
	"time"
)

// window is the counter for one key.
type window struct {
	start  int64 // unix seconds
	period int64 // seconds
	count  int
}

// FixedWindow is an in-memory fixed-window rate limiter. Each key has an
// independent counter that resets whenever the aligned window changes.
//
// FixedWindow is safe for concurrent use; every check is a single
// read-modify-write under one mutex.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewFixedWindow creates an empty limiter. A nil now uses time.Now.
func NewFixedWindow(now func() time.Time) *FixedWindow {
	if now == nil {
		now = time.Now
	}
	return &FixedWindow{
		windows: make(map[string]*window),
		now:     now,
	}
}

// Allow admits or rejects one request for key under the given rate and
// period.
func (l *FixedWindow) Allow(key string, rate int, period time.Duration) bool {
	return l.Check(key, Policy{Rate: rate, Period: period}).Allowed
}

// Check counts one request for key against p and reports the outcome.
// A rejected request leaves the stored count at the rate.
func (l *FixedWindow) Check(key string, p Policy) Result {
	now := l.now().Unix()
	period := p.periodSeconds()
	start := now - now%period
	reset := time.Unix(start+period, 0)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}
	if w.start != start || w.period != period {
		w.start = start
		w.period = period
		w.count = 0
	}

	if w.count+1 > p.Rate {
		w.count = max(p.Rate, 0)
		return Result{
			Allowed:    false,
			Limit:      p.Rate,
			Remaining:  0,
			Reset:      reset,
			RetryAfter: time.Duration(start+period-now) * time.Second,
		}
	}

	w.count++
	return Result{
		Allowed:   true,
		Limit:     p.Rate,
		Remaining: p.Rate - w.count,
		Reset:     reset,
	}
}

// Count returns the stored count for key in its current window.
func (l *FixedWindow) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[key]; ok {
		return w.count
	}
	return 0
}

// Prune drops windows that have ended and returns how many were removed.
func (l *FixedWindow) Prune() int {
	now := l.now().Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if w.start+w.period <= now {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
