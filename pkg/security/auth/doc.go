/*
Package auth authenticates inbound gateway requests.

Exactly one mode is active per request, selected by strict priority:

 1. HMAC, when a shared secret is configured. The client sends X-Timestamp
    (integer epoch seconds), X-Nonce (at least 8 characters) and X-Signature,
    where the signature is

    HMAC-SHA256(secret, timestamp + "\n" + nonce + "\n" + hex(sha256(body)))

    encoded as hex or standard base64.

 2. API key, when only a static key is configured. The client sends X-Api-Key.

 3. Open, when neither is configured. Every request is admitted with the
    principal "anonymous". This is an unsafe development default.

# Basic Usage

	gate := auth.NewGate(auth.Config{HMACSecret: secret})
	mw := auth.NewMiddleware(gate, auth.DefaultMaxBodyBytes, nil)
	mux.Handle("/v1/", mw.Handle(handler))

	func handler(w http.ResponseWriter, r *http.Request) {
		sc, _ := auth.GetSecurityContext(r.Context())
		body, _ := auth.Body(r.Context())
		...
	}

The middleware reads the request body exactly once. The cached bytes are used
for the signature check and are handed to the handler both through Body and as
a fresh r.Body.

# Errors

Rejections are *Error values of two kinds. Malformed input (bad timestamp,
short nonce, undecodable signature) maps to 400; refused credentials
(missing headers, stale timestamp, signature or key mismatch) map to 401.

# Replay Protection

By default nonces are only length-checked. With Config.ReplayProtection a
TTL cache remembers verified nonces for the allowed skew and rejects reuse.
*/
package auth
