// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for logout, mounted under /auth/logout.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Logout)
	return r
}
