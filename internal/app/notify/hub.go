// internal/app/notify/hub.go
package notify

import (
	"context"
	"sync"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pusher attempts real-time delivery of a persisted notification to a
// connected recipient. Implementations must not block on slow consumers.
type Pusher interface {
	Push(ctx context.Context, userID primitive.ObjectID, n models.Notification) error
}

// Hub is the in-process Pusher. Connected clients (the notification stream
// endpoint) subscribe per user; pushes to users with no subscriber are
// dropped silently — the persisted row is the source of truth and the list
// query will pick it up.
type Hub struct {
	mu   sync.RWMutex
	subs map[primitive.ObjectID]map[chan models.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[primitive.ObjectID]map[chan models.Notification]struct{})}
}

// Subscribe registers a listener for one user and returns the delivery
// channel plus an unsubscribe func. The channel is buffered; a full buffer
// counts as a failed push rather than blocking the sender.
func (h *Hub) Subscribe(userID primitive.ObjectID) (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, 16)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.Notification]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
}

// Push delivers n to every subscriber of userID without blocking. A user
// with no subscribers is not an error.
func (h *Hub) Push(_ context.Context, userID primitive.ObjectID, n models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var dropped int
	for ch := range h.subs[userID] {
		select {
		case ch <- n:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return &slowConsumerError{dropped: dropped}
	}
	return nil
}

type slowConsumerError struct{ dropped int }

func (e *slowConsumerError) Error() string {
	return "notification push dropped: subscriber buffer full"
}
