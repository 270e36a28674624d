package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"npcgate/gateway/pkg/bridge"
	"npcgate/gateway/pkg/config"
	"npcgate/gateway/pkg/limits/ratelimit"
	"npcgate/gateway/pkg/proxy/handlers"
	"npcgate/gateway/pkg/proxy/middleware"
	"npcgate/gateway/pkg/proxy/types"
	"npcgate/gateway/pkg/security/auth"
	"npcgate/gateway/pkg/telemetry/metrics"
)

// Route paths.
const (
	RouteDialogPing     = "/v1/dialog/ping"
	RouteDialogGenerate = "/v1/dialog/generate"
	RouteHealth         = "/healthz"
	RouteReady          = "/readyz"
)

// ServiceName is reported by the metadata route.
const ServiceName = "npc-gateway"

// Server is the gateway HTTP server. It owns the bridge client, the
// authentication gate, the rate limiter and its prune scheduler.
type Server struct {
	logger    *slog.Logger
	version   string
	collector *metrics.Collector

	bridge  *bridge.Client
	gate    *auth.Gate
	limiter *ratelimit.Limiter
	pruner  *ratelimit.PruneScheduler
	dialog  *handlers.DialogHandler

	// hot-reloadable values read per request
	env       atomic.Pointer[string]
	workerKey atomic.Pointer[string]

	cfg      atomic.Pointer[config.Config]
	handler  http.Handler
	listener net.Listener

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New builds a server from cfg. cfg must already be validated.
func New(cfg *config.Config, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:  logger.With("component", "server"),
		version: version,
	}
	s.cfg.Store(cfg)
	s.storeHot(cfg)

	var (
		bridgeMetrics *bridge.Metrics
		authMetrics   *auth.Metrics
		limitMetrics  *ratelimit.Metrics
	)
	if cfg.MetricsEnabled() {
		s.collector = metrics.NewCollector()
		reg := s.collector.Registry()
		bridgeMetrics = bridge.NewMetrics(reg)
		authMetrics = auth.NewMetrics(reg)
		limitMetrics = ratelimit.NewMetrics(reg)
	}

	s.bridge = bridge.NewClient(bridge.Config{
		DefaultTimeout: cfg.Bridge.DefaultTimeout,
		MaxPending:     cfg.Bridge.MaxPending,
		Logger:         logger,
		Metrics:        bridgeMetrics,
	})
	s.gate = auth.NewGate(authConfig(cfg),
		auth.WithLogger(logger),
		auth.WithMetrics(authMetrics),
	)
	s.limiter = ratelimit.NewLimiter(limiterConfig(cfg), time.Now, limitMetrics)
	s.pruner = ratelimit.NewPruneScheduler(s.limiter, cfg.Limits.PruneSchedule, logger)
	s.dialog = handlers.NewDialogHandler(s.bridge, dialogSettings(cfg), logger)

	s.handler = s.setupRoutes(cfg)
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled or the listener fails. On cancellation it shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	cfg := s.cfg.Load()
	ln, err := net.Listen("tcp", cfg.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.ListenAddress, err)
	}
	if err := s.pruner.Start(); err != nil {
		_ = ln.Close()
		s.mu.Unlock()
		return err
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway",
			"address", ln.Addr().String(),
			"auth_mode", s.gate.Mode(),
			"worker_path", cfg.Bridge.WorkerPath,
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown stops accepting requests, waits for in-flight requests up to the
// configured shutdown timeout, then fails any outstanding bridge requests
// and detaches the worker.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()

		timeout := s.cfg.Load().Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		if running && s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.pruner.Stop()
		if err := s.bridge.Close(); err != nil {
			s.logger.Debug("closing worker connection failed", "error", err)
		}
		s.gate.Close()

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway stopped")
	})

	return shutdownErr
}

// Reload applies the hot-reloadable parts of cfg: credentials, rate limits,
// dialog settings and the environment label. Listener, bridge and telemetry
// settings need a restart.
func (s *Server) Reload(cfg *config.Config) {
	prev := s.cfg.Load()
	if prev.Server.ListenAddress != cfg.Server.ListenAddress ||
		prev.Bridge.WorkerPath != cfg.Bridge.WorkerPath ||
		prev.Server.MaxBodyBytes != cfg.Server.MaxBodyBytes {
		s.logger.Warn("listener, worker path and body limit changes require a restart")
	}

	s.gate.Update(authConfig(cfg))
	s.limiter.Update(limiterConfig(cfg))
	s.dialog.Update(dialogSettings(cfg))
	s.storeHot(cfg)
	s.cfg.Store(cfg)

	s.logger.Info("configuration reloaded", "auth_mode", s.gate.Mode())
}

func (s *Server) storeHot(cfg *config.Config) {
	env := cfg.Env
	key := cfg.Security.APIKey
	s.env.Store(&env)
	s.workerKey.Store(&key)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Bridge returns the server's bridge client.
func (s *Server) Bridge() *bridge.Client {
	return s.bridge
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes(cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	authMW := auth.NewMiddleware(s.gate, cfg.Server.MaxBodyBytes, types.WriteAuthError)
	protected := func(route string, h http.HandlerFunc) http.Handler {
		return s.instrument(route, authMW.Handle(middleware.RateLimitMiddleware(s.limiter, route)(h)))
	}

	worker := handlers.NewWorkerHandler(s.bridge,
		func() string { return *s.workerKey.Load() },
		handlers.WorkerConfig{
			WriteTimeout:    cfg.Bridge.WriteTimeout,
			PingInterval:    cfg.Bridge.PingInterval,
			PongTimeout:     cfg.Bridge.PongTimeout,
			MaxMessageBytes: cfg.Bridge.MaxMessageBytes,
		},
		s.logger,
	)
	meta := &handlers.MetaHandler{
		Name:    ServiceName,
		Version: s.version,
		Env:     func() string { return *s.env.Load() },
	}

	mux.Handle("GET "+cfg.Bridge.WorkerPath, worker)
	mux.Handle("GET "+RouteDialogPing, protected(RouteDialogPing, s.dialog.Ping))
	mux.Handle("POST "+RouteDialogGenerate, protected(RouteDialogGenerate, s.dialog.Generate))
	mux.Handle("GET "+RouteHealth, s.instrument(RouteHealth, handlers.NewHealthHandler()))
	mux.Handle("GET "+RouteReady, s.instrument(RouteReady, handlers.NewReadyHandler(s.bridge)))
	mux.Handle("GET /{$}", meta)
	mux.HandleFunc("GET /favicon.ico", handlers.Favicon)
	if s.collector != nil {
		mux.Handle("GET "+cfg.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

func (s *Server) instrument(route string, h http.Handler) http.Handler {
	if s.collector == nil {
		return h
	}
	return s.collector.Instrument(route, h)
}

func authConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		HMACSecret:       cfg.Security.HMAC.Secret,
		APIKey:           cfg.Security.APIKey,
		AllowedSkew:      cfg.Security.HMAC.AllowedSkew,
		ReplayProtection: cfg.Security.HMAC.ReplayProtection.Enabled,
		NonceCacheSize:   cfg.Security.HMAC.ReplayProtection.CacheSize,
	}
}

func limiterConfig(cfg *config.Config) ratelimit.Config {
	rc := ratelimit.Config{
		Default: ratelimit.Policy{Rate: cfg.Limits.Rate, Period: cfg.Limits.Period},
		Routes:  make(map[string]ratelimit.Policy, len(cfg.Limits.Routes)),
	}
	for route, rl := range cfg.Limits.Routes {
		rc.Routes[route] = ratelimit.Policy{Rate: rl.Rate, Period: rl.Period}
	}
	return rc
}

func dialogSettings(cfg *config.Config) handlers.DialogSettings {
	return handlers.DialogSettings{
		Env:            cfg.Env,
		MaxInputChars:  cfg.Dialog.MaxInputChars,
		EmotionTimeout: cfg.Dialog.EmotionTimeout,
		GPTTimeout:     cfg.Dialog.GPTTimeout,
		DefaultLocale:  cfg.Dialog.DefaultLocale,
	}
}
