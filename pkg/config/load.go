package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates it. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides. An empty path starts from defaults only.
//
// The loading sequence is:
// 1. Load YAML from file (if any)
// 2. Apply default values
// 3. Apply legacy environment variables (SERVER_API_KEY, RL_DEFAULT_RATE, ...)
// 4. Apply GATEWAY_SECTION_FIELD environment variables
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = NewDefault()
	} else if cfg, err = parseFile(path); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// envOverrides applies typed environment variables and remembers the first
// parse failure.
type envOverrides struct {
	err error
}

func (e *envOverrides) fail(name, val string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid value %q for %s: %w", val, name, err)
	}
}

func (e *envOverrides) str(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func (e *envOverrides) integer(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = i
	}
}

func (e *envOverrides) boolean(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = b
	}
}

func (e *envOverrides) boolPtr(name string, dst **bool) {
	if val := os.Getenv(name); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = &b
	}
}

func (e *envOverrides) duration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = d
	}
}

// seconds reads a plain number of seconds, fractional allowed.
func (e *envOverrides) seconds(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, err)
			return
		}
		*dst = time.Duration(f * float64(time.Second))
	}
}

// applyEnvOverrides applies the legacy variable names first, then the
// GATEWAY_SECTION_FIELD variables, which win on conflict.
func applyEnvOverrides(cfg *Config) error {
	e := &envOverrides{}

	// Legacy names
	e.str("ENV", &cfg.Env)
	e.str("SERVER_API_KEY", &cfg.Security.APIKey)
	e.str("SERVER_HMAC_SECRET", &cfg.Security.HMAC.Secret)
	e.seconds("HMAC_ALLOWED_SKEW", &cfg.Security.HMAC.AllowedSkew)
	e.integer("RL_DEFAULT_RATE", &cfg.Limits.Rate)
	e.seconds("RL_DEFAULT_PER", &cfg.Limits.Period)
	e.seconds("EMOTION_TIMEOUT_S", &cfg.Dialog.EmotionTimeout)
	e.seconds("REQUEST_TIMEOUT_S", &cfg.Dialog.GPTTimeout)
	e.integer("MAX_INPUT_CHARS", &cfg.Dialog.MaxInputChars)

	e.str("GATEWAY_ENV", &cfg.Env)

	// Server overrides
	e.str("GATEWAY_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.duration("GATEWAY_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("GATEWAY_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("GATEWAY_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	e.duration("GATEWAY_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	e.boolean("GATEWAY_SERVER_WATCH_CONFIG", &cfg.Server.WatchConfig)

	// Bridge overrides
	e.str("GATEWAY_BRIDGE_WORKER_PATH", &cfg.Bridge.WorkerPath)
	e.duration("GATEWAY_BRIDGE_DEFAULT_TIMEOUT", &cfg.Bridge.DefaultTimeout)
	e.integer("GATEWAY_BRIDGE_MAX_PENDING", &cfg.Bridge.MaxPending)
	e.duration("GATEWAY_BRIDGE_PING_INTERVAL", &cfg.Bridge.PingInterval)

	// Security overrides
	e.str("GATEWAY_SECURITY_API_KEY", &cfg.Security.APIKey)
	e.str("GATEWAY_SECURITY_HMAC_SECRET", &cfg.Security.HMAC.Secret)
	e.duration("GATEWAY_SECURITY_HMAC_ALLOWED_SKEW", &cfg.Security.HMAC.AllowedSkew)
	e.boolean("GATEWAY_SECURITY_HMAC_REPLAY_PROTECTION_ENABLED", &cfg.Security.HMAC.ReplayProtection.Enabled)

	// Limits overrides
	e.integer("GATEWAY_LIMITS_RATE", &cfg.Limits.Rate)
	e.duration("GATEWAY_LIMITS_PERIOD", &cfg.Limits.Period)
	e.str("GATEWAY_LIMITS_PRUNE_SCHEDULE", &cfg.Limits.PruneSchedule)

	// Dialog overrides
	e.integer("GATEWAY_DIALOG_MAX_INPUT_CHARS", &cfg.Dialog.MaxInputChars)
	e.duration("GATEWAY_DIALOG_EMOTION_TIMEOUT", &cfg.Dialog.EmotionTimeout)
	e.duration("GATEWAY_DIALOG_GPT_TIMEOUT", &cfg.Dialog.GPTTimeout)
	e.str("GATEWAY_DIALOG_DEFAULT_LOCALE", &cfg.Dialog.DefaultLocale)

	// Telemetry overrides
	e.str("GATEWAY_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.str("GATEWAY_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.boolPtr("GATEWAY_TELEMETRY_LOGGING_REDACT_SECRETS", &cfg.Telemetry.Logging.RedactSecrets)
	e.boolPtr("GATEWAY_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.str("GATEWAY_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)

	return e.err
}
