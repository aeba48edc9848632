// internal/app/features/blogs/routes.go
package blogs

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the blog, mounted under /blogs. Reading
// is public; writing requires a session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{slug}", h.ServeOne)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/", h.Create)
		r.Put("/{slug}", h.Update)
		r.Delete("/{slug}", h.Delete)
		r.Post("/{slug}/like", h.Like)
		r.Post("/{slug}/comments", h.Comment)
	})

	return r
}
