package auth

import (
	"errors"
	"net/http"
)

// Kind classifies an authentication rejection.
type Kind int

const (
	// KindMalformed is a request that could not be evaluated (400).
	KindMalformed Kind = iota

	// KindUnauthorized is a request whose credentials were evaluated and
	// refused (401).
	KindUnauthorized
)

// Rejection codes. Each rejection reason is distinct.
const (
	CodeMissingHeaders    = "missing_auth_headers"
	CodeBadTimestamp      = "bad_timestamp"
	CodeStaleTimestamp    = "stale_timestamp"
	CodeShortNonce        = "short_nonce"
	CodeReplayedNonce     = "replayed_nonce"
	CodeBadSignature      = "bad_signature_encoding"
	CodeSignatureMismatch = "signature_mismatch"
	CodeMissingAPIKey     = "missing_api_key"
	CodeAPIKeyMismatch    = "api_key_mismatch"
	CodeBodyTooLarge      = "body_too_large"
	CodeBodyUnreadable    = "body_unreadable"
)

// Error is an authentication rejection.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode maps the rejection to an HTTP status.
func (e *Error) StatusCode() int {
	switch {
	case e.Code == CodeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case e.Kind == KindMalformed:
		return http.StatusBadRequest
	default:
		return http.StatusUnauthorized
	}
}

func malformed(code, msg string) *Error {
	return &Error{Kind: KindMalformed, Code: code, Message: msg}
}

func unauthorized(code, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: msg}
}

// IsMalformed reports whether err is a malformed-input rejection.
func IsMalformed(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr) && authErr.Kind == KindMalformed
}

// IsUnauthorized reports whether err is an authentication-failure rejection.
func IsUnauthorized(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr) && authErr.Kind == KindUnauthorized
}

// CodeOf returns the rejection code of err, or "".
func CodeOf(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
