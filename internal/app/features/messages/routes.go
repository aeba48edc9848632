// internal/app/features/messages/routes.go
package messages

import (
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for messaging, mounted under /messages.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeInbox)
	r.Post("/", h.Send)
	r.Post("/read/{uid}", h.MarkRead)

	return r
}
