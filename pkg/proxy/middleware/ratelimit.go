package middleware

import (
	"math"
	"net/http"
	"strconv"

	"npcgate/gateway/pkg/limits/ratelimit"
	"npcgate/gateway/pkg/proxy/types"
	"npcgate/gateway/pkg/security/auth"
)

// RateLimitMiddleware admits requests through limiter and rejects the rest
// with 429. It must run after authentication: the key is the principal from
// the SecurityContext, or the client address for anonymous callers.
//
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejections also carry Retry-After.
//
// route names the policy to apply. An empty route uses the request path.
func RateLimitMiddleware(limiter *ratelimit.Limiter, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.AnonymousPrincipal
			if sc, ok := auth.GetSecurityContext(r.Context()); ok {
				principal = sc.Principal
			}

			name := route
			if name == "" {
				name = r.URL.Path
			}

			result := limiter.Check(principal, name, r.RemoteAddr)
			setLimitHeaders(w, result)

			if !result.Allowed {
				types.WriteRateLimited(w, int64(math.Ceil(result.RetryAfter.Seconds())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setLimitHeaders(w http.ResponseWriter, result ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
}
