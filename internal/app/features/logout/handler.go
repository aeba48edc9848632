// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler ends sessions.
type Handler struct {
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, Audit: audit, Log: logger}
}

// Logout handles POST /auth/logout. Logging out while signed out is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		h.Audit.AuthEvent(r.Context(), r, audit.EventLogout, user.UID, true, "")
	}
	if err := h.Sessions.SignOut(w, r); err != nil {
		httpjson.InternalError(w, h.Log, "logout: clear session", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed out"})
}
