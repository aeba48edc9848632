// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(rolepolicy.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
