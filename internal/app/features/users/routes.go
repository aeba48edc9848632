// internal/app/features/users/routes.go
package users

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for user endpoints, mounted under /users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/me", h.ServeMe)
		r.Put("/me", h.UpdateMe)
		r.Post("/{uid}/login", h.RecordLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(rolepolicy.RoleAdmin))
		r.Get("/", h.ServeList)
		r.Get("/{uid}", h.ServeOne)
		r.Post("/{uid}/upgrade", h.Upgrade)
		r.Put("/{uid}/role", h.SetRole)
		r.Delete("/{uid}", h.Delete)
	})

	return r
}
