// internal/app/features/notifications/routes.go
package notifications

import "github.com/go-chi/chi/v5"

// Routes returns the notifications subrouter. Mounted under /notifications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Get("/stream", h.Stream)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/{id}/read", h.MarkRead)

	return r
}
