package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateBridge(&cfg.Bridge)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateDialog(&cfg.Dialog)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be host:port: %v", err),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must not be negative"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must be positive"})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "must be positive"})
	}

	return errs
}

func validateBridge(cfg *BridgeConfig) []FieldError {
	var errs []FieldError

	if !strings.HasPrefix(cfg.WorkerPath, "/") {
		errs = append(errs, FieldError{Field: "bridge.worker_path", Message: "must start with /"})
	}
	if cfg.DefaultTimeout <= 0 {
		errs = append(errs, FieldError{Field: "bridge.default_timeout", Message: "must be positive"})
	}
	if cfg.MaxPending < 0 {
		errs = append(errs, FieldError{Field: "bridge.max_pending", Message: "must not be negative"})
	}
	if cfg.PingInterval <= 0 {
		errs = append(errs, FieldError{Field: "bridge.ping_interval", Message: "must be positive"})
	}
	if cfg.PongTimeout <= cfg.PingInterval {
		errs = append(errs, FieldError{
			Field:   "bridge.pong_timeout",
			Message: "must be greater than bridge.ping_interval",
		})
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	if cfg.HMAC.AllowedSkew <= 0 {
		errs = append(errs, FieldError{Field: "security.hmac.allowed_skew", Message: "must be positive"})
	}
	if cfg.HMAC.ReplayProtection.Enabled && cfg.HMAC.Secret == "" {
		errs = append(errs, FieldError{
			Field:   "security.hmac.replay_protection.enabled",
			Message: "requires security.hmac.secret",
		})
	}

	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateRate("limits", cfg.Rate, cfg.Period.Seconds())...)

	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "limits.prune_schedule",
			Message: fmt.Sprintf("invalid cron schedule: %v", err),
		})
	}

	for route, rl := range cfg.Routes {
		field := fmt.Sprintf("limits.routes[%s]", route)
		if !strings.HasPrefix(route, "/") {
			errs = append(errs, FieldError{Field: field, Message: "route must start with /"})
		}
		errs = append(errs, validateRate(field, rl.Rate, rl.Period.Seconds())...)
	}

	return errs
}

func validateRate(prefix string, rate int, periodSeconds float64) []FieldError {
	var errs []FieldError
	if rate <= 0 {
		errs = append(errs, FieldError{Field: prefix + ".rate", Message: "must be positive"})
	}
	if periodSeconds < 1 {
		errs = append(errs, FieldError{Field: prefix + ".period", Message: "must be at least 1s"})
	}
	return errs
}

func validateDialog(cfg *DialogConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxInputChars <= 0 {
		errs = append(errs, FieldError{Field: "dialog.max_input_chars", Message: "must be positive"})
	}
	if cfg.EmotionTimeout <= 0 {
		errs = append(errs, FieldError{Field: "dialog.emotion_timeout", Message: "must be positive"})
	}
	if cfg.GPTTimeout <= 0 {
		errs = append(errs, FieldError{Field: "dialog.gpt_timeout", Message: "must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", cfg.Logging.Format),
		})
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
	}

	return errs
}
