// Package server ties the bridge, the authentication gate, the rate limiter and
// the HTTP handlers together and manages their lifecycle.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides(path)
//	if err != nil {
//	    return err
//	}
//	srv := server.New(cfg, logger, version)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled and then shuts down gracefully:
// in-flight HTTP requests get up to server.shutdown_timeout, after which
// outstanding bridge requests are failed and the worker socket is closed.
//
// # Middleware Chain
//
//	Recovery -> RequestID -> Logging -> mux
//
// and, per dialog route, inside the mux:
//
//	Instrument -> Auth -> RateLimit -> handler
//
// # Reloading
//
// Reload swaps credentials, rate limit policies, dialog settings and the
// environment label in place. In-flight requests finish with the settings
// they started with.
package server
