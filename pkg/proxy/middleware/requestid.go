package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"npcgate/gateway/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds client supplied ids.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns every request an id and adds it to the context
// and the X-Request-ID response header. A client supplied X-Request-ID is
// reused when present and reasonably short.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the request context.
// Returns empty string if not found.
func GetRequestID(r *http.Request) string {
	return logging.GetRequestID(r.Context())
}
