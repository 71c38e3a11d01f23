package auditlog_test

import (
	"testing"

	"github.com/pedramghafoori/mentorconnect/internal/app/store/audit"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/auditlog"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"github.com/pedramghafoori/mentorconnect/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newLogger(t *testing.T, cfg auditlog.Config) (*auditlog.Logger, *audit.Store) {
	t.Helper()
	store := audit.New(testutil.SetupTestDB(t))
	return auditlog.New(store, zap.NewNop(), cfg), store
}

func assignment(status models.AssignmentStatus) models.Assignment {
	return models.Assignment{
		ID:                     primitive.NewObjectID(),
		MenteeID:               primitive.NewObjectID(),
		MentorID:               primitive.NewObjectID(),
		OpportunityID:          primitive.NewObjectID(),
		PaymentAuthorizationID: "auth_1",
		Status:                 status,
	}
}

func TestTransitionRecorded(t *testing.T) {
	logger, store := newLogger(t, auditlog.Config{Lifecycle: "all", Payment: "all"})
	ctx := testutil.TestContext(t)

	a := assignment(models.AssignmentCharged)
	logger.Transition(ctx, a)

	events, err := store.GetByAssignment(ctx, a.ID, 10)
	if err != nil {
		t.Fatalf("GetByAssignment: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].EventType != audit.EventAssignmentAccepted {
		t.Errorf("event_type = %q, want %q", events[0].EventType, audit.EventAssignmentAccepted)
	}
	if events[0].AuthorizationID != "auth_1" {
		t.Errorf("authorization_id = %q", events[0].AuthorizationID)
	}
	if events[0].Details["status"] != "charged" {
		t.Errorf("detail status = %q", events[0].Details["status"])
	}
}

func TestCompensationEvents(t *testing.T) {
	logger, store := newLogger(t, auditlog.Config{Lifecycle: "all", Payment: "all"})
	ctx := testutil.TestContext(t)

	logger.CompensationFailed(ctx, "auth_1", "authority unreachable")
	logger.CompensationSucceeded(ctx, "auth_2")

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryPayment})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
}

func TestCategorySettingOff(t *testing.T) {
	logger, store := newLogger(t, auditlog.Config{Lifecycle: "off", Payment: "db"})
	ctx := testutil.TestContext(t)

	logger.Transition(ctx, assignment(models.AssignmentRejected))
	logger.CompensationFailed(ctx, "auth_1", "timeout")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 (lifecycle off, payment db)", len(events))
	}
	if events[0].Category != audit.CategoryPayment {
		t.Errorf("category = %q, want payment", events[0].Category)
	}
}

func TestLogOnlySettingSkipsStore(t *testing.T) {
	logger, store := newLogger(t, auditlog.Config{Lifecycle: "log", Payment: "log"})
	ctx := testutil.TestContext(t)

	logger.Transition(ctx, assignment(models.AssignmentCompleted))

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

func TestNilLoggerIsNoOp(t *testing.T) {
	var logger *auditlog.Logger
	ctx := testutil.TestContext(t)

	// Must not panic.
	logger.Transition(ctx, assignment(models.AssignmentCanceled))
	logger.CompensationFailed(ctx, "auth_1", "timeout")
}
