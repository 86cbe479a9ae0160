// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an authentication or account event written to the audit
// trail. Every field is sanitized before it is logged.
type SecurityEvent struct {
	Event     string
	UserID    string
	Email     string
	Provider  string
	IPAddress string
	UserAgent string
	Success   bool
	Reason    string
	Details   map[string]string
}

// SecurityLogger writes SecurityEvents under component=security.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWithLogger(Logger())
}

// NewSecurityLoggerWithLogger creates a security logger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "security").Logger()}
}

// LogEvent writes event. Failures are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", SanitizeLogValue(event.Event)).Str("status", status)

	if event.UserID != "" {
		e = e.Str("user_id", SanitizeLogValue(event.UserID))
	}
	if event.Email != "" {
		e = e.Str("email", SanitizeEmail(SanitizeLogValue(event.Email)))
	}
	if event.Provider != "" {
		e = e.Str("provider", SanitizeLogValue(event.Provider))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", SanitizeLogValue(event.IPAddress))
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(SanitizeLogValue(event.UserAgent), 100))
	}
	if event.Reason != "" && !event.Success {
		e = e.Str("reason", SanitizeLogValue(event.Reason))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, SanitizeLogValue(v)))
	}

	e.Msg("security event")
}

// LogLoginSuccess records a successful sign-in.
func (l *SecurityLogger) LogLoginSuccess(userID, email, provider, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_success",
		UserID:    userID,
		Email:     email,
		Provider:  provider,
		IPAddress: ip,
		Success:   true,
	})
}

// LogLoginFailure records a rejected sign-in attempt.
func (l *SecurityLogger) LogLoginFailure(email, provider, ip, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_failed",
		Email:     email,
		Provider:  provider,
		IPAddress: ip,
		Reason:    reason,
	})
}

// LogRegistration records a newly registered account.
func (l *SecurityLogger) LogRegistration(userID, email, provider, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "user_registered",
		UserID:    userID,
		Email:     email,
		Provider:  provider,
		IPAddress: ip,
		Success:   true,
	})
}

// LogEmailVerification records the outcome of a verification-link click.
func (l *SecurityLogger) LogEmailVerification(userID string, success bool, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:   "email_verified",
		UserID:  userID,
		Success: success,
		Reason:  reason,
	})
}

// LogLogout records a session being destroyed.
func (l *SecurityLogger) LogLogout(userID, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "logout",
		UserID:    userID,
		IPAddress: ip,
		Success:   true,
	})
}

// LogAdminBearerRejected records a request to an admin-bearer route whose
// Authorization header did not match.
func (l *SecurityLogger) LogAdminBearerRejected(ip, path string) {
	l.LogEvent(&SecurityEvent{
		Event:     "admin_bearer_rejected",
		IPAddress: ip,
		Details:   map[string]string{"path": path},
	})
}

// LogCSRFFailure records a form post with a missing or mismatched CSRF token.
func (l *SecurityLogger) LogCSRFFailure(ip, userAgent, path string) {
	l.LogEvent(&SecurityEvent{
		Event:     "csrf_failed",
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   map[string]string{"path": path},
	})
}

// SanitizeLogValue strips CR/LF and other control characters so user input
// cannot forge log lines.
func SanitizeLogValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// SanitizeToken keeps only the first and last 4 characters of a secret.
// Example: "eyJhbGciOiJIUzI1NiJ9.abc" -> "eyJh....abc"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail masks the local part of an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveKeys = map[string]bool{
	"token":         true,
	"password":      true,
	"secret":        true,
	"api_key":       true,
	"authorization": true,
	"bearer":        true,
	"cookie":        true,
	"session":       true,
	"session_id":    true,
}

// SanitizeValue masks value when key names a secret, and masks email-like
// values.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
