package auth

import (
	"crypto/hmac"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// settings is an immutable snapshot of the gate's policy.
type settings struct {
	cfg    Config
	nonces *NonceCache
}

// Gate authenticates inbound requests. Exactly one mode is active at a time,
// chosen by strict priority: HMAC, then API key, then open.
//
// Gate is safe for concurrent use. Update swaps the policy atomically; a
// request in flight keeps the snapshot it started with.
type Gate struct {
	current atomic.Pointer[settings]
	mu      sync.Mutex // serializes Update

	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger sets the gate logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// WithMetrics attaches decision metrics.
func WithMetrics(m *Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// NewGate creates a gate enforcing cfg.
func NewGate(cfg Config, opts ...Option) *Gate {
	g := &Gate{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "auth")

	g.current.Store(g.build(cfg, nil))
	if cfg.Mode() == MethodNone {
		g.logger.Warn("no HMAC secret or API key configured, accepting all requests anonymously")
	}
	return g
}

func (g *Gate) build(cfg Config, prev *settings) *settings {
	if cfg.AllowedSkew <= 0 {
		cfg.AllowedSkew = DefaultAllowedSkew
	}

	s := &settings{cfg: cfg}
	if cfg.Mode() == MethodHMAC && cfg.ReplayProtection {
		if prev != nil && prev.nonces != nil && prev.nonces.TTL() == cfg.AllowedSkew {
			s.nonces = prev.nonces
		} else {
			s.nonces = NewNonceCache(cfg.AllowedSkew, cfg.NonceCacheSize)
		}
	}
	return s
}

// Update replaces the gate's credentials and policy.
func (g *Gate) Update(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.current.Load()
	next := g.build(cfg, prev)
	g.current.Store(next)

	if prev.nonces != nil && prev.nonces != next.nonces {
		prev.nonces.Stop()
	}
	if prev.cfg.Mode() != next.cfg.Mode() {
		g.logger.Info("authentication mode changed",
			"from", prev.cfg.Mode(),
			"to", next.cfg.Mode(),
		)
	}
}

// Mode returns the active authentication method.
func (g *Gate) Mode() Method {
	return g.current.Load().cfg.Mode()
}

// Close stops background work.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s := g.current.Load(); s.nonces != nil {
		s.nonces.Stop()
	}
}

// Authenticate evaluates the request headers and the buffered body and
// returns the resulting SecurityContext. A rejection is always an *Error.
func (g *Gate) Authenticate(header http.Header, body []byte) (*SecurityContext, error) {
	s := g.current.Load()

	var (
		sc  *SecurityContext
		err error
	)
	switch s.cfg.Mode() {
	case MethodHMAC:
		sc, err = g.verifyHMAC(s, header, body)
	case MethodAPIKey:
		sc, err = verifyAPIKey(s.cfg.APIKey, header)
	default:
		sc = &SecurityContext{Principal: AnonymousPrincipal, Method: MethodNone}
	}

	g.metrics.recordDecision(s.cfg.Mode(), err)
	return sc, err
}

func (g *Gate) verifyHMAC(s *settings, header http.Header, body []byte) (*SecurityContext, error) {
	tsHeader := header.Get(HeaderTimestamp)
	nonce := header.Get(HeaderNonce)
	sigHeader := header.Get(HeaderSignature)
	if tsHeader == "" || nonce == "" || sigHeader == "" {
		return nil, unauthorized(CodeMissingHeaders, "missing signature, timestamp or nonce header")
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return nil, malformed(CodeBadTimestamp, "invalid timestamp")
	}

	// compare against the bounds, not |now-ts|, which overflows for extreme ts
	now := g.now().Unix()
	maxSkew := int64(s.cfg.AllowedSkew / time.Second)
	if ts < now-maxSkew || ts > now+maxSkew {
		return nil, unauthorized(CodeStaleTimestamp, "timestamp outside allowed skew")
	}

	if len(nonce) < MinNonceLength {
		return nil, malformed(CodeShortNonce, "nonce too short")
	}

	given, ok := decodeSignature(sigHeader)
	if !ok {
		return nil, malformed(CodeBadSignature, "bad signature encoding")
	}

	expected := sign(s.cfg.HMACSecret, tsHeader, nonce, body)
	if !hmac.Equal(expected, given) {
		return nil, unauthorized(CodeSignatureMismatch, "signature mismatch")
	}

	// nonces are recorded only after the signature verifies
	if s.nonces != nil && s.nonces.Seen(nonce) {
		return nil, unauthorized(CodeReplayedNonce, "nonce already used")
	}

	return &SecurityContext{Principal: string(MethodHMAC), Method: MethodHMAC}, nil
}

func verifyAPIKey(expected string, header http.Header) (*SecurityContext, error) {
	given := header.Get(HeaderAPIKey)
	if given == "" {
		return nil, unauthorized(CodeMissingAPIKey, "missing API key")
	}
	if subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
		return nil, unauthorized(CodeAPIKeyMismatch, "invalid API key")
	}
	return &SecurityContext{Principal: string(MethodAPIKey), Method: MethodAPIKey}, nil
}

// CheckAPIKey reports whether header carries the expected API key. An empty
// expected key admits everything.
func CheckAPIKey(expected string, header http.Header) bool {
	if expected == "" {
		return true
	}
	_, err := verifyAPIKey(expected, header)
	return err == nil
}
