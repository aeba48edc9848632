// internal/app/features/analytics/routes.go
package analytics

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for analytics, mounted under /admin/analytics.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(rolepolicy.RoleAdmin))
	r.Get("/", h.ServeOverview)
	return r
}
