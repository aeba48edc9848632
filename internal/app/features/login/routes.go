// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for password login, mounted under /auth/login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Login)
	return r
}
