package types

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"npcgate/gateway/pkg/bridge"
	"npcgate/gateway/pkg/security/auth"
)

// ErrorResponse is the JSON body returned for every error condition.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error and determines the HTTP status.
	Type string `json:"type"`

	// Param is the name of the request field that caused the error (if applicable).
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication indicates an authentication failure (401).
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeRequestTooLarge indicates an oversized payload (413).
	ErrorTypeRequestTooLarge = "request_too_large"

	// ErrorTypeRateLimitExceeded indicates too many requests (429).
	ErrorTypeRateLimitExceeded = "rate_limit_exceeded"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeBadGateway indicates the worker reported an error (502).
	ErrorTypeBadGateway = "bad_gateway"

	// ErrorTypeServiceUnavailable indicates no worker is connected (503).
	ErrorTypeServiceUnavailable = "service_unavailable"

	// ErrorTypeRequestCancelled indicates the client went away before the worker answered (499).
	ErrorTypeRequestCancelled = "request_cancelled"

	// ErrorTypeGatewayTimeout indicates the worker did not answer in time (504).
	ErrorTypeGatewayTimeout = "gateway_timeout"
)

// Error code constants for common error scenarios.
const (
	CodeMissingField      = "missing_field"
	CodeInvalidJSON       = "invalid_json"
	CodeRequestTooLarge   = "request_too_large"
	CodeRateLimited       = "rate_limited"
	CodeWorkerError       = "worker_error"
	CodeWorkerTimeout     = "worker_timeout"
	CodeWorkerUnavailable = "worker_unavailable"
	CodeInternalError     = "internal_error"
	CodeRequestCancelled  = "request_cancelled"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewRateLimitError creates an error response for rejected admissions (429).
func NewRateLimitError() *ErrorResponse {
	return NewErrorResponse("rate limit exceeded", ErrorTypeRateLimitExceeded, "", CodeRateLimited)
}

// StatusClientClosedRequest is the non-standard status logged when the caller
// disconnects before a response is ready.
const StatusClientClosedRequest = 499

// HTTPStatusCode returns the HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeGatewayTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeRequestCancelled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromAuthError converts an authentication rejection.
func FromAuthError(err *auth.Error) *ErrorResponse {
	switch {
	case err.StatusCode() == http.StatusRequestEntityTooLarge:
		return NewErrorResponse(err.Message, ErrorTypeRequestTooLarge, "", err.Code)
	case err.Kind == auth.KindMalformed:
		return NewErrorResponse(err.Message, ErrorTypeInvalidRequest, "", err.Code)
	default:
		return NewErrorResponse(err.Message, ErrorTypeAuthentication, "", err.Code)
	}
}

// FromBridgeError converts a bridge submit failure. prefix names the stage
// that failed, e.g. "emotion".
func FromBridgeError(prefix string, err error) *ErrorResponse {
	var workerErr *bridge.WorkerError
	switch {
	case errors.Is(err, bridge.ErrNoWorker):
		return NewErrorResponse(err.Error(), ErrorTypeServiceUnavailable, "", CodeWorkerUnavailable)
	case errors.Is(err, bridge.ErrRequestTimeout):
		return NewErrorResponse(err.Error(), ErrorTypeGatewayTimeout, "", CodeWorkerTimeout)
	case errors.As(err, &workerErr):
		return NewErrorResponse(prefix+" service error: "+workerErr.Message, ErrorTypeBadGateway, "", CodeWorkerError)
	case errors.Is(err, context.Canceled):
		return NewErrorResponse("request cancelled", ErrorTypeRequestCancelled, "", CodeRequestCancelled)
	case errors.Is(err, bridge.ErrTooManyPending):
		return NewErrorResponse(err.Error(), ErrorTypeServiceUnavailable, "", CodeWorkerUnavailable)
	default:
		return NewErrorResponse(prefix+" service error: "+err.Error(), ErrorTypeBadGateway, "", CodeWorkerError)
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes resp with the status derived from its type.
func WriteError(w http.ResponseWriter, resp *ErrorResponse) {
	WriteJSON(w, resp.Error.HTTPStatusCode(), resp)
}

// WriteAuthError is an auth.ErrorHandler.
func WriteAuthError(w http.ResponseWriter, _ *http.Request, err *auth.Error) {
	WriteError(w, FromAuthError(err))
}

// WriteRateLimited writes a 429 with Retry-After in whole seconds.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int64) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds, 10))
	WriteError(w, NewRateLimitError())
}
