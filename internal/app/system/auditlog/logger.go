// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config controls where audit events go, per category.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only),
// "off" (disabled).
type Config struct {
	Auth  string
	Admin string
}

// Logger records audit events to MongoDB (audit.Store) and/or structured
// logs (zap), per Config.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// clientIP extracts the client IP from the request.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) mode(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	default:
		// role + admin events share the admin setting
		return l.config.Admin
	}
}

// Event records one audit event according to the category's mode.
// Failures to persist are logged and swallowed: audit logging never fails
// the request it describes.
func (l *Logger) Event(ctx context.Context, r *http.Request, ev audit.Event) {
	mode := l.mode(ev.Category)
	if mode == "off" {
		return
	}
	if r != nil {
		ev.IP = clientIP(r)
		ev.UserAgent = r.UserAgent()
	}

	if mode == "all" || mode == "log" {
		l.zapLog.Info("audit",
			zap.String("category", ev.Category),
			zap.String("event", ev.EventType),
			zap.String("user_uid", ev.UserUID),
			zap.String("actor_uid", ev.ActorUID),
			zap.Bool("success", ev.Success),
			zap.String("failure_reason", ev.FailureReason),
			zap.Any("details", ev.Details),
		)
	}
	if mode == "all" || mode == "db" {
		if err := l.store.Log(ctx, ev); err != nil {
			l.zapLog.Error("audit event persist failed", zap.Error(err),
				zap.String("event", ev.EventType))
		}
	}
}

// AuthEvent is a convenience wrapper for auth-category events.
func (l *Logger) AuthEvent(ctx context.Context, r *http.Request, eventType, userUID string, success bool, reason string) {
	l.Event(ctx, r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserUID:       userUID,
		Success:       success,
		FailureReason: reason,
	})
}

// detailsMap converts a free-form detail string into the Event.Details map;
// an empty string yields nil so bson omitempty still applies.
func detailsMap(detail string) map[string]string {
	if detail == "" {
		return nil
	}
	return map[string]string{"detail": detail}
}

// RoleEvent is a convenience wrapper for role-category events.
func (l *Logger) RoleEvent(ctx context.Context, r *http.Request, eventType, userUID, actorUID, detail string) {
	l.Event(ctx, r, audit.Event{
		Category:  audit.CategoryRole,
		EventType: eventType,
		UserUID:   userUID,
		ActorUID:  actorUID,
		Success:   true,
		Details:   detailsMap(detail),
	})
}

// AdminEvent is a convenience wrapper for admin-category events.
func (l *Logger) AdminEvent(ctx context.Context, r *http.Request, eventType, userUID, actorUID, detail string) {
	l.Event(ctx, r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserUID:   userUID,
		ActorUID:  actorUID,
		Success:   true,
		Details:   detailsMap(detail),
	})
}
