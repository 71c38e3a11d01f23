// internal/app/notify/hub_test.go
package notify

import (
	"context"
	"testing"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	n := models.Notification{ID: primitive.NewObjectID(), RecipientID: userID, Type: TypeAssignmentReceived}
	if err := hub.Push(context.Background(), userID, n); err != nil {
		t.Fatalf("Push: %v", err)
	}

	select {
	case got := <-ch:
		if got.ID != n.ID {
			t.Errorf("got id = %s, want %s", got.ID.Hex(), n.ID.Hex())
		}
	default:
		t.Fatal("nothing delivered")
	}
}

func TestHubNoSubscriberIsNotAnError(t *testing.T) {
	hub := NewHub()
	n := models.Notification{ID: primitive.NewObjectID(), Type: TypeAssignmentAccepted}
	if err := hub.Push(context.Background(), primitive.NewObjectID(), n); err != nil {
		t.Fatalf("Push with no subscriber: %v", err)
	}
}

func TestHubFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	_, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	var lastErr error
	for i := 0; i < 17; i++ {
		lastErr = hub.Push(context.Background(), userID, models.Notification{ID: primitive.NewObjectID()})
	}
	if lastErr == nil {
		t.Fatal("push past buffer capacity must report a failed delivery")
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if err := hub.Push(context.Background(), userID, models.Notification{ID: primitive.NewObjectID()}); err != nil {
		t.Fatalf("Push after unsubscribe: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestHubMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	ch1, u1 := hub.Subscribe(userID)
	defer u1()
	ch2, u2 := hub.Subscribe(userID)
	defer u2()

	if err := hub.Push(context.Background(), userID, models.Notification{ID: primitive.NewObjectID()}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(ch1) != 1 || len(ch2) != 1 {
		t.Errorf("deliveries = %d, %d; want 1, 1", len(ch1), len(ch2))
	}
}
