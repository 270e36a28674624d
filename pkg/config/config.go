package config

import "time"

// Config is the root configuration structure for the gateway.
type Config struct {
	// Env is a free-form deployment label reported by the ping route
	// (e.g. "dev", "prod").
	// Default: "dev"
	Env string `yaml:"env"`

	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Bridge contains configuration for the worker connection.
	Bridge BridgeConfig `yaml:"bridge"`

	// Security contains request authentication settings.
	Security SecurityConfig `yaml:"security"`

	// Limits contains rate limiting settings.
	Limits LimitsConfig `yaml:"limits"`

	// Dialog contains settings for the dialog routes.
	Dialog DialogConfig `yaml:"dialog"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// It must exceed the longest dialog round trip.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the request body buffered for authentication.
	// Default: 1MB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// WatchConfig reloads credentials and rate limits when the
	// configuration file changes.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`

	// ReloadDebounce is the quiet period before a changed file is reloaded.
	// Default: 200ms
	ReloadDebounce time.Duration `yaml:"reload_debounce"`
}

// BridgeConfig contains configuration for the worker bridge.
type BridgeConfig struct {
	// WorkerPath is the websocket endpoint the worker connects to.
	// Default: "/ws/ai-worker"
	WorkerPath string `yaml:"worker_path"`

	// DefaultTimeout applies to tasks submitted without an explicit timeout.
	// Default: 10s
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// MaxPending bounds outstanding tasks (0 = unbounded).
	// Default: 1024
	MaxPending int `yaml:"max_pending"`

	// WriteTimeout bounds a single frame write to the worker.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// PingInterval is how often the gateway pings the worker.
	// Default: 30s
	PingInterval time.Duration `yaml:"ping_interval"`

	// PongTimeout is how long the gateway waits for any frame from the
	// worker before treating the connection as dead.
	// Default: 60s
	PongTimeout time.Duration `yaml:"pong_timeout"`

	// MaxMessageBytes limits inbound worker frames.
	// Default: 4MB
	MaxMessageBytes int64 `yaml:"max_message_bytes"`
}

// SecurityConfig contains authentication configuration.
type SecurityConfig struct {
	// APIKey enables API-key authentication when set and no HMAC secret
	// is configured. It also guards the worker endpoint.
	APIKey string `yaml:"api_key"`

	// HMAC contains signature verification settings.
	HMAC HMACConfig `yaml:"hmac"`
}

// HMACConfig contains HMAC signature settings.
type HMACConfig struct {
	// Secret enables HMAC mode when set.
	Secret string `yaml:"secret"`

	// AllowedSkew bounds the distance between X-Timestamp and server time.
	// Default: 300s
	AllowedSkew time.Duration `yaml:"allowed_skew"`

	// ReplayProtection configures the seen-nonce cache.
	ReplayProtection ReplayProtectionConfig `yaml:"replay_protection"`
}

// ReplayProtectionConfig configures nonce reuse detection.
type ReplayProtectionConfig struct {
	// Enabled rejects nonces seen within the allowed skew.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CacheSize bounds the number of remembered nonces (0 = unbounded).
	// Default: 100000
	CacheSize uint64 `yaml:"cache_size"`
}

// LimitsConfig contains rate limiting configuration.
type LimitsConfig struct {
	// Rate is the default number of requests per Period.
	// Default: 60
	Rate int `yaml:"rate"`

	// Period is the default window length.
	// Default: 60s
	Period time.Duration `yaml:"period"`

	// PruneSchedule is the cron schedule for dropping expired windows.
	// Default: "@every 1m"
	PruneSchedule string `yaml:"prune_schedule"`

	// Routes overrides the default per route path.
	Routes map[string]RouteLimit `yaml:"routes"`
}

// RouteLimit is a per-route rate limit.
type RouteLimit struct {
	Rate   int           `yaml:"rate"`
	Period time.Duration `yaml:"period"`
}

// DialogConfig contains settings for the dialog routes.
type DialogConfig struct {
	// MaxInputChars rejects longer dialog_text with 413.
	// Default: 1000
	MaxInputChars int `yaml:"max_input_chars"`

	// EmotionTimeout bounds the emotion task.
	// Default: 2s
	EmotionTimeout time.Duration `yaml:"emotion_timeout"`

	// GPTTimeout bounds the gpt task.
	// Default: 6s
	GPTTimeout time.Duration `yaml:"gpt_timeout"`

	// DefaultLocale is used when a request omits locale.
	// Default: "ko-KR"
	DefaultLocale string `yaml:"default_locale"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the slog logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credential attributes.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the scrape endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return boolValue(c.Telemetry.Metrics.Enabled, DefaultMetricsEnabled)
}

// RedactSecrets reports whether credential attributes are masked in logs.
func (c *Config) RedactSecrets() bool {
	return boolValue(c.Telemetry.Logging.RedactSecrets, DefaultRedactSecrets)
}

func boolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
