// internal/app/notify/dispatcher_test.go
package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pedramghafoori/mentorconnect/internal/app/notify"
	notificationstore "github.com/pedramghafoori/mentorconnect/internal/app/store/notifications"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"github.com/pedramghafoori/mentorconnect/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type failingPusher struct{ calls int }

func (p *failingPusher) Push(context.Context, primitive.ObjectID, models.Notification) error {
	p.calls++
	return errors.New("no connection")
}

func TestSendPersistsAndPushes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	hub := notify.NewHub()
	d := notify.New(store, hub, zap.NewNop())
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	err := d.Send(ctx, userID, notify.TypeAssignmentReceived, map[string]string{"mentee_name": "Jordan Lee"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	rows, err := d.ListForUser(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("persisted = %d, want 1", len(rows))
	}
	if rows[0].Type != notify.TypeAssignmentReceived {
		t.Errorf("type = %q", rows[0].Type)
	}

	select {
	case got := <-ch:
		if got.ID != rows[0].ID {
			t.Errorf("pushed id = %s, want %s", got.ID.Hex(), rows[0].ID.Hex())
		}
	default:
		t.Fatal("nothing pushed to subscriber")
	}
}

func TestSendSurvivesPushFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	pusher := &failingPusher{}
	d := notify.New(store, pusher, zap.NewNop())
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	if err := d.Send(ctx, userID, notify.TypeAssignmentAccepted, nil); err != nil {
		t.Fatalf("Send must not surface push failure: %v", err)
	}
	if pusher.calls != 1 {
		t.Errorf("push calls = %d, want 1", pusher.calls)
	}

	rows, err := d.ListForUser(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("persisted = %d, want 1 despite push failure", len(rows))
	}
}

func TestDispatcherSetAssignmentStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	d := notify.New(store, nil, zap.NewNop())
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	assignmentID := primitive.NewObjectID()
	if err := d.Send(ctx, userID, notify.TypeAssignmentReceived, map[string]string{
		"assignment_id": assignmentID.Hex(),
		"status":        "pending",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := d.SetAssignmentStatus(ctx, assignmentID, models.AssignmentRejected); err != nil {
		t.Fatalf("SetAssignmentStatus: %v", err)
	}

	rows, _ := d.ListForUser(ctx, userID, 0)
	if rows[0].Payload["status"] != "rejected" {
		t.Errorf("embedded status = %q, want rejected", rows[0].Payload["status"])
	}
}

func TestMarkReadFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	d := notify.New(store, nil, zap.NewNop())
	ctx := testutil.TestContext(t)

	userID := primitive.NewObjectID()
	d.Send(ctx, userID, notify.TypeAssignmentReceived, nil)
	d.Send(ctx, userID, notify.TypeAssignmentAccepted, nil)

	count, err := d.UnreadCount(ctx, userID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	rows, _ := d.ListForUser(ctx, userID, 0)
	if err := d.MarkRead(ctx, rows[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	n, err := d.MarkAllRead(ctx, userID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != 1 {
		t.Errorf("marked = %d, want 1", n)
	}
}
