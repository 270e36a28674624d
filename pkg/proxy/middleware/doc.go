// Package middleware provides the gateway's HTTP middleware.
//
// The server chains them as
//
//	RecoveryMiddleware(LoggingMiddleware(RequestIDMiddleware(mux)))
//
// with authentication and RateLimitMiddleware applied per route inside the
// mux, so a rejected request is still logged with its request id.
//
// LoggingMiddleware installs a request scope (see logging.WithRequestScope)
// before calling the next handler; the principal and auth method recorded
// by the auth middleware therefore show up on the access log line too.
package middleware
