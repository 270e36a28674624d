package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBodyBytes caps how much of a request body is buffered.
const DefaultMaxBodyBytes int64 = 1 << 20

// BufferBody reads the whole request body once, replaces r.Body with a
// reader over the cached bytes, and returns the bytes. Subsequent consumers
// read the same bytes; the original stream is never read again.
func BufferBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		r.Body = http.NoBody
		return []byte{}, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	_ = r.Body.Close()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, malformed(CodeBodyTooLarge, "request body too large")
		}
		return nil, malformed(CodeBodyUnreadable, "failed to read request body")
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// WithBody stores the buffered body in ctx.
func WithBody(ctx context.Context, body []byte) context.Context {
	return context.WithValue(ctx, bodyKey, body)
}

// Body returns the body buffered by the middleware.
func Body(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(bodyKey).([]byte)
	return body, ok
}
