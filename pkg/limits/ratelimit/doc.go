// Package ratelimit provides fixed-window admission control keyed by
// principal and route.
//
// Windows are aligned to absolute time: for a period of P seconds the window
// containing t starts at t - t%P. The first Rate requests in a window are
// admitted and the rest rejected until the next window begins. There is no
// queueing or smoothing.
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    Default: ratelimit.Policy{Rate: 60, Period: time.Minute},
//	}, nil, nil)
//
//	res := limiter.Check(principal, "/v1/dialog/generate", r.RemoteAddr)
//	if !res.Allowed {
//	    // 429, Retry-After: res.RetryAfter
//	}
//
// Anonymous callers are keyed by network address, which is spoofable behind
// untrusted proxies.
package ratelimit
