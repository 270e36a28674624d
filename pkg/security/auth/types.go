package auth

import (
	"context"
	"time"
)

// Method identifies how a request was authenticated.
type Method string

const (
	// MethodHMAC means the request carried a valid HMAC-SHA256 signature.
	MethodHMAC Method = "hmac"

	// MethodAPIKey means the request carried the configured static API key.
	MethodAPIKey Method = "api_key"

	// MethodNone means no credentials are configured and the request was
	// admitted anonymously.
	MethodNone Method = "none"
)

// AnonymousPrincipal is assigned in open mode.
const AnonymousPrincipal = "anonymous"

// Request headers read by the gate.
const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

// DefaultAllowedSkew is the maximum distance between the signed timestamp
// and the server clock.
const DefaultAllowedSkew = 300 * time.Second

// MinNonceLength is the shortest nonce accepted in HMAC mode.
const MinNonceLength = 8

// SecurityContext is the result of a successful authentication.
type SecurityContext struct {
	// Principal is "hmac", "api_key" or "anonymous".
	Principal string

	// Method is the mode that admitted the request.
	Method Method
}

// Anonymous reports whether the request was admitted without credentials.
func (s *SecurityContext) Anonymous() bool {
	return s == nil || s.Method == MethodNone
}

// Config contains the credentials and policy for a Gate.
type Config struct {
	// HMACSecret enables HMAC mode when non-empty. It takes priority over
	// APIKey.
	HMACSecret string

	// APIKey enables API-key mode when non-empty and HMACSecret is empty.
	APIKey string

	// AllowedSkew bounds |now - timestamp| in HMAC mode.
	// Default: 300s
	AllowedSkew time.Duration

	// ReplayProtection rejects nonces already seen within AllowedSkew.
	ReplayProtection bool

	// NonceCacheSize bounds the replay cache (0 = unbounded).
	NonceCacheSize uint64
}

// Mode returns the method the configuration selects.
func (c Config) Mode() Method {
	switch {
	case c.HMACSecret != "":
		return MethodHMAC
	case c.APIKey != "":
		return MethodAPIKey
	default:
		return MethodNone
	}
}

type contextKey string

const (
	securityContextKey contextKey = "security_context"
	bodyKey            contextKey = "request_body"
)

// WithSecurityContext stores sc in ctx.
func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey, sc)
}

// GetSecurityContext retrieves the SecurityContext stored by the middleware.
func GetSecurityContext(ctx context.Context) (*SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey).(*SecurityContext)
	return sc, ok
}
