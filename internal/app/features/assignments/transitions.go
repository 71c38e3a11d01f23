// internal/app/features/assignments/transitions.go
package assignments

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/timeouts"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type transitionFn func(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)

// Accept handles POST /assignments/{id}/accept. The mentor accepts the
// application; the payment hold is captured before the status commits.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept assignment", h.Svc.Accept)
}

// Reject handles POST /assignments/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject assignment", h.Svc.Reject)
}

// Cancel handles POST /assignments/{id}/cancel. The mentee withdraws a
// pending application; any payment hold is released.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel assignment", h.Svc.Cancel)
}

// Complete handles POST /assignments/{id}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete assignment", h.Svc.Complete)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, operation string, fn transitionFn) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid assignment id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, operation)
	defer cancel()

	updated, err := fn(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
