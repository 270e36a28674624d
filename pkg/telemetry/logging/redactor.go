package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Redactor masks credentials in log attributes.
type Redactor struct {
	keys     map[string]struct{}
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor for the gateway's credential fields.
func NewRedactor() *Redactor {
	return &Redactor{
		keys: map[string]struct{}{
			"api_key":     {},
			"x-api-key":   {},
			"secret":      {},
			"hmac_secret": {},
			"signature":   {},
			"x-signature": {},
			"password":    {},
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
		},
	}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if _, ok := r.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

// RedactString masks credential patterns inside a string value.
func (r *Redactor) RedactString(value string) string {
	for _, p := range r.patterns {
		value = p.ReplaceAllString(value, redacted)
	}
	return value
}
