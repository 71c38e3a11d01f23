// internal/app/features/assignments/routes.go
package assignments

import "github.com/go-chi/chi/v5"

// Routes returns the assignments subrouter. Mounted under /assignments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/reject", h.Reject)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/complete", h.Complete)

	return r
}
