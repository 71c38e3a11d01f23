// internal/app/notify/dispatcher.go

// Package notify persists notification records and attempts best-effort
// real-time delivery. Delivery failure is swallowed and logged, never
// returned: a notification must not be able to fail a business operation
// that already committed. The persisted row remains retrievable via the
// list query either way.
package notify

import (
	"context"

	notificationstore "github.com/pedramghafoori/mentorconnect/internal/app/store/notifications"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/metrics"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notification types emitted by the assignment lifecycle.
const (
	TypeAssignmentReceived  = "assignment_received"  // to mentor: new application
	TypeAssignmentAccepted  = "assignment_accepted"  // to mentee
	TypeAssignmentRejected  = "assignment_rejected"  // to mentee
	TypeAssignmentWithdrawn = "assignment_withdrawn" // to mentor: mentee canceled
	TypeAssignmentCompleted = "assignment_completed" // to mentee
)

// Dispatcher owns notification writes. Nothing else touches the
// notifications collection directly.
type Dispatcher struct {
	store  *notificationstore.Store
	pusher Pusher
	log    *zap.Logger
}

func New(store *notificationstore.Store, pusher Pusher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher, log: logger}
}

// Send persists the notification, then attempts real-time delivery. The
// error return reflects persistence only; push failures are logged and
// counted, never surfaced.
func (d *Dispatcher) Send(ctx context.Context, recipientID primitive.ObjectID, kind string, payload map[string]string) error {
	n, err := d.store.Insert(ctx, models.Notification{
		RecipientID: recipientID,
		Type:        kind,
		Payload:     payload,
	})
	if err != nil {
		return err
	}

	if d.pusher != nil {
		if err := d.pusher.Push(ctx, recipientID, n); err != nil {
			metrics.NotificationPushFailures.Inc()
			d.log.Warn("realtime notification push failed",
				zap.String("notification_id", n.ID.Hex()),
				zap.String("recipient_id", recipientID.Hex()),
				zap.String("type", kind),
				zap.Error(err))
		}
	}
	return nil
}

// SetAssignmentStatus patches the denormalized status field on every
// notification referencing the assignment. The lifecycle engine calls this
// inside its transaction so the embedded status can never disagree with a
// committed assignment.
func (d *Dispatcher) SetAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status models.AssignmentStatus) error {
	_, err := d.store.SetAssignmentStatus(ctx, assignmentID, status)
	return err
}

// ListForUser returns a user's notifications, newest first.
func (d *Dispatcher) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	return d.store.ListForUser(ctx, userID, limit)
}

// UnreadCount returns the user's unread notification count.
func (d *Dispatcher) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return d.store.UnreadCount(ctx, userID)
}

// MarkRead flips the read flag on one notification.
func (d *Dispatcher) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	return d.store.MarkRead(ctx, id)
}

// MarkAllRead flips the read flag on all of a user's unread notifications.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return d.store.MarkAllRead(ctx, userID)
}
