// internal/app/features/notifications/stream.go
package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const streamKeepalive = 25 * time.Second

// Stream handles GET /notifications/stream?user=<id> as a server-sent event
// stream. Each persisted notification pushed to the user while connected is
// written as one SSE data frame. Periodic comment lines keep intermediaries
// from closing the idle connection.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "streaming unsupported"})
		return
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case n := <-ch:
			data, err := json.Marshal(n)
			if err != nil {
				h.Log.Warn("notification stream encode failed",
					zap.String("notification_id", n.ID.Hex()),
					zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
