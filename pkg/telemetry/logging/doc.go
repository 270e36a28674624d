// Package logging builds the gateway's slog logger.
//
// Records logged with a context carry the request-scoped fields stored in
// that context by the HTTP middleware:
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "dialog generated") // includes request_id
//
// With RedactSecrets, attributes named like credentials (api_key, secret,
// signature) are replaced by "[REDACTED]".
package logging
