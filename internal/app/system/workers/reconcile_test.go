package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/app/payments"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeLister struct {
	rows []models.Assignment
	err  error
}

func (f *fakeLister) ListSettledWithAuthorization(ctx context.Context, since time.Time) ([]models.Assignment, error) {
	return f.rows, f.err
}

type fakeQuerier struct {
	mu      sync.Mutex
	states  map[string]payments.Status
	errs    map[string]error
	queried []string
}

func (f *fakeQuerier) Query(ctx context.Context, id string) (payments.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, id)
	if err, ok := f.errs[id]; ok {
		return "", err
	}
	return f.states[id], nil
}

func settled(status models.AssignmentStatus, authID string) models.Assignment {
	return models.Assignment{
		ID:                     primitive.NewObjectID(),
		Status:                 status,
		PaymentAuthorizationID: authID,
	}
}

func newReconciler(lister *fakeLister, querier *fakeQuerier) *AuthReconciler {
	return NewAuthReconciler(lister, querier, zap.NewNop(), time.Hour, time.Hour)
}

func TestSweepAgreement(t *testing.T) {
	lister := &fakeLister{rows: []models.Assignment{
		settled(models.AssignmentCharged, "auth_1"),
		settled(models.AssignmentCompleted, "auth_2"),
		settled(models.AssignmentRejected, "auth_3"),
		settled(models.AssignmentCanceled, "auth_4"),
	}}
	querier := &fakeQuerier{states: map[string]payments.Status{
		"auth_1": payments.StatusCaptured,
		"auth_2": payments.StatusCaptured,
		"auth_3": payments.StatusCanceled,
		"auth_4": payments.StatusCanceled,
	}}

	w := newReconciler(lister, querier)
	w.sweep()

	if len(querier.queried) != 4 {
		t.Errorf("queried %d authorizations, want 4", len(querier.queried))
	}
	for _, a := range lister.rows {
		if !w.check(context.Background(), a) {
			t.Errorf("check(%s/%s) reported mismatch", a.Status, a.PaymentAuthorizationID)
		}
	}
}

func TestCheckMismatch(t *testing.T) {
	querier := &fakeQuerier{states: map[string]payments.Status{
		"auth_1": payments.StatusHeld,
		"auth_2": payments.StatusCaptured,
	}}
	w := newReconciler(&fakeLister{}, querier)

	// A charged assignment whose hold was never captured.
	if w.check(context.Background(), settled(models.AssignmentCharged, "auth_1")) {
		t.Error("charged assignment with held authorization should mismatch")
	}
	// A rejected assignment whose hold was captured anyway.
	if w.check(context.Background(), settled(models.AssignmentRejected, "auth_2")) {
		t.Error("rejected assignment with captured authorization should mismatch")
	}
}

func TestCheckRetryableQuerySkips(t *testing.T) {
	querier := &fakeQuerier{errs: map[string]error{
		"auth_1": &payments.Error{Category: payments.Retryable, Op: "query", Message: "timeout"},
	}}
	w := newReconciler(&fakeLister{}, querier)

	if !w.check(context.Background(), settled(models.AssignmentCharged, "auth_1")) {
		t.Error("transient query failure should not count as a mismatch")
	}
}

func TestStartStop(t *testing.T) {
	lister := &fakeLister{rows: []models.Assignment{settled(models.AssignmentCharged, "auth_1")}}
	querier := &fakeQuerier{states: map[string]payments.Status{"auth_1": payments.StatusCaptured}}

	w := NewAuthReconciler(lister, querier, zap.NewNop(), 5*time.Millisecond, time.Hour)
	w.Start()
	time.Sleep(25 * time.Millisecond)
	w.Stop()

	querier.mu.Lock()
	n := len(querier.queried)
	querier.mu.Unlock()
	if n == 0 {
		t.Error("worker never swept while running")
	}
}
