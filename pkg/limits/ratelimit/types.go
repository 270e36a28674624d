package ratelimit

import "time"

// Policy is a fixed-window budget: at most Rate requests per Period.
type Policy struct {
	// Rate is the number of requests admitted per window.
	Rate int

	// Period is the window length. Windows are aligned to Unix time modulo
	// Period, with one-second granularity.
	Period time.Duration
}

// periodSeconds returns the window length in whole seconds (minimum 1).
func (p Policy) periodSeconds() int64 {
	s := int64(p.Period / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Limit is the configured rate.
	Limit int

	// Remaining is how many requests remain in the current window.
	Remaining int

	// Reset is when the current window ends.
	Reset time.Time

	// RetryAfter is the time until Reset, set only when rejected.
	RetryAfter time.Duration
}
