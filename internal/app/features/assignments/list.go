// internal/app/features/assignments/list.go
package assignments

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/paging"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/timeouts"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Get handles GET /assignments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid assignment id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get assignment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, assignmentstore.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "assignment not found"})
			return
		}
		writeError(w, h.Log, err)
		return
	}

	respondJSON(w, http.StatusOK, a)
}

// listResponse is one page of assignments with look-ahead pagination
// indicators.
type listResponse struct {
	Assignments []models.Assignment `json:"assignments"`
	HasPrev     bool                `json:"has_prev"`
	HasNext     bool                `json:"has_next"`
	NextStart   int                 `json:"next_start,omitempty"`
}

// List handles GET /assignments. Exactly one of ?mentor= or ?mentee= is
// required; ?status= optionally narrows the mentor view and ?start= pages
// through the result (1-based).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mentorHex := r.URL.Query().Get("mentor")
	menteeHex := r.URL.Query().Get("mentee")
	if (mentorHex == "") == (menteeHex == "") {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "exactly one of mentor or mentee is required"})
		return
	}

	status := models.AssignmentStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid status"})
		return
	}

	start := paging.ParseStart(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list assignments")
	defer cancel()

	skip := int64(start - 1)
	var (
		out []models.Assignment
		err error
	)
	if mentorHex != "" {
		var mentorID primitive.ObjectID
		mentorID, err = primitive.ObjectIDFromHex(mentorHex)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid mentor id"})
			return
		}
		out, err = h.Store.ListByMentor(ctx, mentorID, status, skip, paging.LimitPlusOne())
	} else {
		var menteeID primitive.ObjectID
		menteeID, err = primitive.ObjectIDFromHex(menteeHex)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid mentee id"})
			return
		}
		out, err = h.Store.ListByMentee(ctx, menteeID, skip, paging.LimitPlusOne())
	}
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	page := paging.TrimPage(&out, start)
	if out == nil {
		out = []models.Assignment{}
	}
	resp := listResponse{Assignments: out, HasPrev: page.HasPrev, HasNext: page.HasNext}
	if page.HasNext {
		resp.NextStart = paging.ComputeRange(start, len(out)).NextStart
	}

	respondJSON(w, http.StatusOK, resp)
}
