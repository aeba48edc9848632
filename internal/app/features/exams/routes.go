// internal/app/features/exams/routes.go
package exams

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for exam tracking, mounted under /exams.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.Create)
	r.Get("/{id}", h.ServeOne)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}
