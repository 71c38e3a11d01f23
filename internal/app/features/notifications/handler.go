// internal/app/features/notifications/handler.go

// Package notifications serves the notification read API and the real-time
// stream. Writes happen only through the lifecycle engine's dispatcher; this
// feature reads, marks read, and streams.
package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pedramghafoori/mentorconnect/internal/app/notify"
	notificationstore "github.com/pedramghafoori/mentorconnect/internal/app/store/notifications"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/timeouts"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Handler serves notification reads and the SSE stream. The user identity
// arrives as a query parameter; authentication happens upstream of this
// service.
type Handler struct {
	Dispatcher *notify.Dispatcher
	Hub        *notify.Hub
	Log        *zap.Logger
}

func NewHandler(d *notify.Dispatcher, hub *notify.Hub, logger *zap.Logger) *Handler {
	return &Handler{Dispatcher: d, Hub: hub, Log: logger}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func userParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.URL.Query().Get("user"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid or missing user"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// List handles GET /notifications?user=<id>&limit=<n>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid limit"})
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	out, err := h.Dispatcher.ListForUser(ctx, userID, limit)
	if err != nil {
		h.Log.Error("list notifications failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	if out == nil {
		out = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, out)
}

// UnreadCount handles GET /notifications/unread-count?user=<id>.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread count")
	defer cancel()

	count, err := h.Dispatcher.UnreadCount(ctx, userID)
	if err != nil {
		h.Log.Error("unread count failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkRead handles POST /notifications/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid notification id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	if err := h.Dispatcher.MarkRead(ctx, id); err != nil {
		if errors.Is(err, notificationstore.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "notification not found"})
			return
		}
		h.Log.Error("mark read failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllRead handles POST /notifications/read-all?user=<id>.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "mark all notifications read")
	defer cancel()

	n, err := h.Dispatcher.MarkAllRead(ctx, userID)
	if err != nil {
		h.Log.Error("mark all read failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
