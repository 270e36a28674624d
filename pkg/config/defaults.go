package config

import "time"

// Default values for configuration fields.
const (
	DefaultEnv = "dev"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxBodyBytes    = int64(1 << 20)
	DefaultReloadDebounce  = 200 * time.Millisecond

	// Bridge defaults
	DefaultWorkerPath      = "/ws/ai-worker"
	DefaultBridgeTimeout   = 10 * time.Second
	DefaultMaxPending      = 1024
	DefaultWSWriteTimeout  = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultPongTimeout     = 60 * time.Second
	DefaultMaxMessageBytes = int64(4 << 20)

	// Security defaults
	DefaultAllowedSkew    = 300 * time.Second
	DefaultNonceCacheSize = uint64(100000)

	// Limits defaults
	DefaultRate          = 60
	DefaultPeriod        = 60 * time.Second
	DefaultPruneSchedule = "@every 1m"

	// Dialog defaults
	DefaultMaxInputChars  = 1000
	DefaultEmotionTimeout = 2 * time.Second
	DefaultGPTTimeout     = 6 * time.Second
	DefaultLocale         = "ko-KR"

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultRedactSecrets  = true
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = DefaultEnv
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.ReloadDebounce == 0 {
		cfg.Server.ReloadDebounce = DefaultReloadDebounce
	}

	// Bridge defaults
	if cfg.Bridge.WorkerPath == "" {
		cfg.Bridge.WorkerPath = DefaultWorkerPath
	}
	if cfg.Bridge.DefaultTimeout == 0 {
		cfg.Bridge.DefaultTimeout = DefaultBridgeTimeout
	}
	if cfg.Bridge.MaxPending == 0 {
		cfg.Bridge.MaxPending = DefaultMaxPending
	}
	if cfg.Bridge.WriteTimeout == 0 {
		cfg.Bridge.WriteTimeout = DefaultWSWriteTimeout
	}
	if cfg.Bridge.PingInterval == 0 {
		cfg.Bridge.PingInterval = DefaultPingInterval
	}
	if cfg.Bridge.PongTimeout == 0 {
		cfg.Bridge.PongTimeout = DefaultPongTimeout
	}
	if cfg.Bridge.MaxMessageBytes == 0 {
		cfg.Bridge.MaxMessageBytes = DefaultMaxMessageBytes
	}

	// Security defaults
	if cfg.Security.HMAC.AllowedSkew == 0 {
		cfg.Security.HMAC.AllowedSkew = DefaultAllowedSkew
	}
	if cfg.Security.HMAC.ReplayProtection.CacheSize == 0 {
		cfg.Security.HMAC.ReplayProtection.CacheSize = DefaultNonceCacheSize
	}

	// Limits defaults
	if cfg.Limits.Rate == 0 {
		cfg.Limits.Rate = DefaultRate
	}
	if cfg.Limits.Period == 0 {
		cfg.Limits.Period = DefaultPeriod
	}
	if cfg.Limits.PruneSchedule == "" {
		cfg.Limits.PruneSchedule = DefaultPruneSchedule
	}
	for route, rl := range cfg.Limits.Routes {
		if rl.Period == 0 {
			rl.Period = cfg.Limits.Period
		}
		cfg.Limits.Routes[route] = rl
	}

	// Dialog defaults
	if cfg.Dialog.MaxInputChars == 0 {
		cfg.Dialog.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.Dialog.EmotionTimeout == 0 {
		cfg.Dialog.EmotionTimeout = DefaultEmotionTimeout
	}
	if cfg.Dialog.GPTTimeout == 0 {
		cfg.Dialog.GPTTimeout = DefaultGPTTimeout
	}
	if cfg.Dialog.DefaultLocale == "" {
		cfg.Dialog.DefaultLocale = DefaultLocale
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// NewDefault returns a configuration with every default applied.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
