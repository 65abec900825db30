package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditRecoveryEmailAccepted   AuditEvent = "recovery_email_accepted"
	AuditRecoveryEmailRejected   AuditEvent = "recovery_email_rejected"
	AuditRecoveryVerified        AuditEvent = "recovery_verified"
	AuditRecoveryAnswersRejected AuditEvent = "recovery_answers_rejected"
	AuditRecoveryRestarted       AuditEvent = "recovery_restarted"
	AuditPasswordResetSuccess    AuditEvent = "password_reset_success"
	AuditPasswordResetRejected   AuditEvent = "password_reset_rejected"
	AuditLoginSuccess            AuditEvent = "login_success"
	AuditLoginFailure            AuditEvent = "login_failure"
	AuditLogout                  AuditEvent = "logout"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logEvent is a convenience for events tied to a known account.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, accountID int64, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.Int64("account_id", accountID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure logs a rejected attempt with its reason.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
