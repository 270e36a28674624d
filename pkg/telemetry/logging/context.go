package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"

	// AuthMethodKey is the context key for the authentication method.
	AuthMethodKey contextKey = "auth_method"

	scopeKey contextKey = "scope"
)

// scope holds identity fields learned deeper in the handler chain so that
// outer middleware logging with the original context still sees them.
type scope struct {
	mu        sync.Mutex
	principal string
	method    string
}

// WithRequestScope installs a mutable scope in ctx. WithPrincipal and
// WithAuthMethod calls made on any derived context are also recorded in it.
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey, &scope{})
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey).(*scope)
	return s
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithPrincipal adds the authenticated principal to the context.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	if s := scopeFrom(ctx); s != nil {
		s.mu.Lock()
		s.principal = principal
		s.mu.Unlock()
	}
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetPrincipal retrieves the principal from the context.
func GetPrincipal(ctx context.Context) string {
	if principal, ok := ctx.Value(PrincipalKey).(string); ok {
		return principal
	}
	if s := scopeFrom(ctx); s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.principal
	}
	return ""
}

// WithAuthMethod adds the authentication method to the context.
func WithAuthMethod(ctx context.Context, method string) context.Context {
	if s := scopeFrom(ctx); s != nil {
		s.mu.Lock()
		s.method = method
		s.mu.Unlock()
	}
	return context.WithValue(ctx, AuthMethodKey, method)
}

// GetAuthMethod retrieves the authentication method from the context.
func GetAuthMethod(ctx context.Context) string {
	if method, ok := ctx.Value(AuthMethodKey).(string); ok {
		return method
	}
	if s := scopeFrom(ctx); s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.method
	}
	return ""
}

// contextAttrs extracts the request-scoped fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), requestID))
	}
	if principal := GetPrincipal(ctx); principal != "" {
		attrs = append(attrs, slog.String(string(PrincipalKey), principal))
	}
	if method := GetAuthMethod(ctx); method != "" {
		attrs = append(attrs, slog.String(string(AuthMethodKey), method))
	}

	return attrs
}

// ContextHandler decorates records logged with a context (InfoContext and
// friends) with the request-scoped fields stored in that context.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if attrs := contextAttrs(ctx); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
