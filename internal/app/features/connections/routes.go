// internal/app/features/connections/routes.go
package connections

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for connections, mounted under /connections.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Delete("/{uid}", h.Disconnect)

	// Only the teacher side can initiate a link.
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(rolepolicy.RoleTeacher, rolepolicy.RoleAdmin))
		r.Post("/", h.Connect)
	})

	return r
}
