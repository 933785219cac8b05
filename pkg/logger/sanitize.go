package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// SanitizedEmail masks an address for logging, e.g. "u***@e******.com"
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if len(local) > 1 {
		local = local[:1] + strings.Repeat("*", len(local)-1)
	}

	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		for i := 0; i < len(labels)-1; i++ {
			labels[i] = strings.Repeat("*", len(labels[i]))
		}
		domain = strings.Join(labels, ".")
	}
	return local + "@" + domain
}

// RedactedAttr hides value in production and passes it through elsewhere
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

var sensitiveParams = []string{
	"password",
	"token", // also matches access_token, refresh_token, id_token
	"secret",
	"api_key",
	"apikey",
	"email",
	"code",
	"user_id",
}

// SanitizeQueryString reports whether a raw query carries a parameter that
// must not reach the logs, in which case the whole query is dropped.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}
	for name := range values {
		name = strings.ToLower(name)
		for _, param := range sensitiveParams {
			if strings.Contains(name, param) {
				return true
			}
		}
	}
	return false
}
