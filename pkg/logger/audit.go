package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventLogout        = "logout"
	EventTokenRefresh  = "token_refresh"
	EventTwoFAEnable   = "2fa_enable"
	EventTwoFADisable  = "2fa_disable"
	EventTwoFAVerify   = "2fa_verify"
	EventAPIKeyCreate  = "api_key_create"
	EventAPIKeyRevoke  = "api_key_revoke"
	EventOAuthSignIn   = "oauth_sign_in"
	EventProfileUpdate = "profile_update"
)

// AuditEvent is a single security-relevant event
type AuditEvent struct {
	EventType     string
	UserID        string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes audit records through slog. A nil *AuditLogger is a no-op.
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger, now: time.Now}
}

// LogAuthAttempt records a sign-in style event. Failures log at warn.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	if al == nil {
		return
	}
	attrs := al.base("auth", event.EventType)
	attrs = append(attrs, slog.Bool("success", event.Success))
	attrs = appendIfSet(attrs, "user_id", event.UserID)
	attrs = appendIfSet(attrs, "ip_address", event.IPAddress)
	attrs = appendIfSet(attrs, "user_agent", event.UserAgent)
	attrs = appendIfSet(attrs, "failure_reason", event.FailureReason)
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogAccountAction records a change made by an authenticated user
func (al *AuditLogger) LogAccountAction(eventType, userID, ipAddress string, metadata map[string]string) {
	if al == nil {
		return
	}
	attrs := al.base("account", eventType)
	attrs = append(attrs, slog.String("user_id", userID))
	attrs = appendIfSet(attrs, "ip_address", ipAddress)
	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}

func (al *AuditLogger) base(auditType, eventType string) []slog.Attr {
	return []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", eventType),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}
}

func appendIfSet(attrs []slog.Attr, key, value string) []slog.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}
