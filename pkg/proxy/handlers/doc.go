// Package handlers provides the gateway's HTTP endpoints.
//
// # Endpoints
//
//	GET  /ws/ai-worker         worker websocket (WorkerHandler)
//	GET  /v1/dialog/ping       authentication probe (DialogHandler.Ping)
//	POST /v1/dialog/generate   emotion task, then gpt task (DialogHandler.Generate)
//	GET  /healthz              liveness
//	GET  /readyz               200 while a worker is attached, else 503
//	GET  /                     service metadata
//
// # Worker Websocket
//
// If an API key is configured the worker must present it in X-Api-Key,
// otherwise the socket is closed with 1008 (policy violation) right after
// the upgrade. An accepted socket becomes the bridge's active connection and
// replaces any earlier one. Every text frame is handed to the bridge; the
// gateway pings every PingInterval and drops the socket after PongTimeout of
// silence.
//
// # Dialog Generation
//
// The handler is a thin pass-through: both worker results are returned
// exactly as received. Bridge failures map to 503 (no worker), 504 (timeout)
// and 502 (worker error).
package handlers
