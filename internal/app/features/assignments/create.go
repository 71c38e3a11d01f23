// internal/app/features/assignments/create.go
package assignments

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/app/lifecycle"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/timeouts"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type prerequisitesBody struct {
	Verified   bool       `json:"verified"`
	Method     string     `json:"method"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	SignedAt   *time.Time `json:"signed_at,omitempty"`
}

type agreementsBody struct {
	MenteeSignature      string `json:"mentee_signature"`
	CounterpartSignature string `json:"counterpart_signature,omitempty"`
}

type createRequest struct {
	MenteeID      string `json:"mentee_id"`
	OpportunityID string `json:"opportunity_id"`

	// FeeSnapshot is in minor currency units (cents).
	FeeSnapshot     int64             `json:"fee_snapshot"`
	Prerequisites   prerequisitesBody `json:"prerequisites"`
	Agreements      agreementsBody    `json:"agreements"`
	AuthorizationID string            `json:"authorization_id,omitempty"`
}

// Create handles POST /assignments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	menteeID, err := primitive.ObjectIDFromHex(req.MenteeID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid mentee_id"})
		return
	}
	oppID, err := primitive.ObjectIDFromHex(req.OpportunityID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid opportunity_id"})
		return
	}
	if req.Prerequisites.Method != "" &&
		req.Prerequisites.Method != models.PrereqMethodExternalCheck &&
		req.Prerequisites.Method != models.PrereqMethodManualAttestation {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid prerequisites.method"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create assignment")
	defer cancel()

	created, err := h.Svc.Create(ctx, lifecycle.CreateInput{
		MenteeID:      menteeID,
		OpportunityID: oppID,
		FeeSnapshot:   req.FeeSnapshot,
		Prerequisites: models.Prerequisites{
			Verified:   req.Prerequisites.Verified,
			Method:     req.Prerequisites.Method,
			VerifiedAt: req.Prerequisites.VerifiedAt,
			SignedAt:   req.Prerequisites.SignedAt,
		},
		Agreements: models.Agreements{
			MenteeSignature:      req.Agreements.MenteeSignature,
			CounterpartSignature: req.Agreements.CounterpartSignature,
		},
		AuthorizationID: req.AuthorizationID,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}
