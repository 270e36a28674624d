package auth

import (
	"log/slog"
	"net/http"

	"npcgate/gateway/pkg/telemetry/logging"
)

// ErrorHandler writes a rejection response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *Error)

// Middleware buffers the request body at the trust boundary, authenticates
// the request with a Gate and stores the SecurityContext in the request
// context.
type Middleware struct {
	gate         *Gate
	maxBodyBytes int64
	onError      ErrorHandler
}

// NewMiddleware creates an authentication middleware. A nil onError falls
// back to a plain-text http.Error response.
func NewMiddleware(gate *Gate, maxBodyBytes int64, onError ErrorHandler) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err *Error) {
			http.Error(w, err.Message, err.StatusCode())
		}
	}
	return &Middleware{
		gate:         gate,
		maxBodyBytes: maxBodyBytes,
		onError:      onError,
	}
}

// Handle wraps next with authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := BufferBody(w, r, m.maxBodyBytes)
		if err != nil {
			m.reject(w, r, err.(*Error))
			return
		}

		sc, err := m.gate.Authenticate(r.Header, body)
		if err != nil {
			m.reject(w, r, err.(*Error))
			return
		}

		ctx := WithSecurityContext(r.Context(), sc)
		ctx = WithBody(ctx, body)
		ctx = logging.WithPrincipal(ctx, sc.Principal)
		ctx = logging.WithAuthMethod(ctx, string(sc.Method))

		slog.DebugContext(ctx, "request authenticated", "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err *Error) {
	slog.WarnContext(r.Context(), "authentication rejected",
		"code", err.Code,
		"remote_addr", r.RemoteAddr,
		"path", r.URL.Path,
	)
	m.onError(w, r, err)
}
