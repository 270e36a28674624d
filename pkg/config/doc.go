// Package config provides configuration management for the gateway.
//
// Configuration is read from an optional YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("gateway.yaml")
//
// # Environment Variable Overrides
//
// Variables follow the convention GATEWAY_SECTION_FIELD, for example:
//
//	GATEWAY_SERVER_LISTEN_ADDRESS=0.0.0.0:8000
//	GATEWAY_SECURITY_HMAC_SECRET=...
//	GATEWAY_LIMITS_RATE=120
//
// The shorter legacy names are also honored, with lower precedence:
// ENV, SERVER_API_KEY, SERVER_HMAC_SECRET, HMAC_ALLOWED_SKEW (seconds),
// RL_DEFAULT_RATE, RL_DEFAULT_PER (seconds), EMOTION_TIMEOUT_S,
// REQUEST_TIMEOUT_S and MAX_INPUT_CHARS.
//
// # Example
//
//	env: prod
//	server:
//	  listen_address: "0.0.0.0:8000"
//	  watch_config: true
//	security:
//	  hmac:
//	    secret: "change-me"
//	    allowed_skew: 300s
//	limits:
//	  rate: 60
//	  period: 60s
//	  routes:
//	    /v1/dialog/generate:
//	      rate: 20
//	dialog:
//	  max_input_chars: 1000
//	  emotion_timeout: 2s
//	  gpt_timeout: 6s
//
// # Hot Reload
//
// Watcher re-reads the file after it settles and hands the validated result
// to a callback. Only credentials and rate limits are applied live; listener
// and bridge settings take effect on restart.
package config
