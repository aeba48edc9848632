// internal/app/features/books/routes.go
package books

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the library, mounted under /books.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeOne)
	r.Get("/{id}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(rolepolicy.RoleTeacher, rolepolicy.RoleAdmin))
		r.Post("/", h.Upload)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
