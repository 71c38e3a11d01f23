// internal/app/features/assignments/respond.go
package assignments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pedramghafoori/mentorconnect/internal/app/lifecycle"
	"github.com/pedramghafoori/mentorconnect/internal/app/payments"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	opportunitystore "github.com/pedramghafoori/mentorconnect/internal/app/store/opportunities"
	userstore "github.com/pedramghafoori/mentorconnect/internal/app/store/users"
	"go.uber.org/zap"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the engine's error taxonomy as HTTP statuses:
//
//	not found                      404
//	invalid state transition       409 (duplicate clicks, stale clients)
//	duplicate application          409
//	validation failures            422
//	payment declined               402
//	payment authority unreachable  503 + Retry-After (caller may retry)
//	compensation failure           502 (held funds without a local record)
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var comp *lifecycle.CompensationError
	if errors.As(err, &comp) {
		// The triggering failure is what the caller acts on, but the
		// dangling authorization is the part an operator must see.
		log.Error("assignment operation left a dangling authorization",
			zap.String("authorization_id", comp.AuthorizationID),
			zap.Error(err))
		respondJSON(w, http.StatusBadGateway, errorBody{
			Error:   "compensation_failed",
			Message: "the operation failed and the payment hold could not be released; support has been alerted",
		})
		return
	}

	switch {
	case errors.Is(err, assignmentstore.ErrNotFound),
		errors.Is(err, opportunitystore.ErrNotFound),
		errors.Is(err, userstore.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: err.Error()})

	case errors.Is(err, lifecycle.ErrInvalidStateTransition):
		respondJSON(w, http.StatusConflict, errorBody{Error: "invalid_state_transition", Message: err.Error()})

	case errors.Is(err, assignmentstore.ErrDuplicateAssignment):
		respondJSON(w, http.StatusConflict, errorBody{Error: "duplicate_assignment", Message: err.Error()})

	case errors.Is(err, lifecycle.ErrNoMentor), errors.Is(err, lifecycle.ErrInvalidFee):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation_failed", Message: err.Error()})

	case payments.IsRetryable(err):
		w.Header().Set("Retry-After", "5")
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "payment_unavailable", Message: err.Error()})

	case payments.IsRejected(err), payments.IsFatal(err):
		respondJSON(w, http.StatusPaymentRequired, errorBody{Error: "payment_rejected", Message: err.Error()})

	default:
		log.Error("assignment operation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}
