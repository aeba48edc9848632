// internal/app/features/settings/routes.go
package settings

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for site settings, mounted under
// /admin/settings. Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(rolepolicy.RoleAdmin))

	r.Get("/", h.ServeGet)
	r.Put("/", h.Update)
	r.Post("/reset", h.Reset)

	return r
}
