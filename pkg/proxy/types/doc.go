// Package types defines the gateway's HTTP request, response and error
// bodies.
//
// Every error is written as
//
//	{"error": {"message": "...", "type": "...", "param": "...", "code": "..."}}
//
// and the type determines the status code: invalid_request_error 400,
// authentication_error 401, request_too_large 413, rate_limit_exceeded 429,
// bad_gateway 502 (worker error), service_unavailable 503 (no worker) and
// gateway_timeout 504.
package types
