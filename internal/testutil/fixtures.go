// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role and returns it with its
// generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, name, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		Email:     primitive.NewObjectID().Hex() + "@test.local",
		Role:      role,
		AvatarURL: "https://cdn.test.local/avatars/default.png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert user fixture: %v", err)
	}
	return u
}

// CreateMentor inserts a mentor user.
func (f *Fixtures) CreateMentor(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, "mentor")
}

// CreateMentee inserts a mentee user.
func (f *Fixtures) CreateMentee(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, "mentee")
}

// CreateOpportunity inserts an opportunity owned by the given mentor with the
// given fee in minor units. A zero mentorID creates an unassigned
// opportunity.
func (f *Fixtures) CreateOpportunity(ctx context.Context, mentorID primitive.ObjectID, fee int64) models.Opportunity {
	f.t.Helper()

	now := time.Now().UTC()
	o := models.Opportunity{
		ID:        primitive.NewObjectID(),
		MentorID:  mentorID,
		Title:     "Bronze Cross Recert",
		Location:  "Toronto",
		StartDate: now.Add(14 * 24 * time.Hour),
		Fee:       fee,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("opportunities").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("insert opportunity fixture: %v", err)
	}
	return o
}

// CreateAssignment inserts an assignment in the given status.
func (f *Fixtures) CreateAssignment(ctx context.Context, menteeID, mentorID, opportunityID primitive.ObjectID, status models.AssignmentStatus) models.Assignment {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Assignment{
		ID:            primitive.NewObjectID(),
		MenteeID:      menteeID,
		MentorID:      mentorID,
		OpportunityID: opportunityID,
		FeeSnapshot:   5000,
		StartDate:     now.Add(14 * 24 * time.Hour),
		Prerequisites: models.Prerequisites{
			Verified: true,
			Method:   models.PrereqMethodExternalCheck,
		},
		Agreements: models.Agreements{MenteeSignature: "Test Mentee"},
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("insert assignment fixture: %v", err)
	}
	return a
}

// CreateNotification inserts a notification for the given recipient.
func (f *Fixtures) CreateNotification(ctx context.Context, recipientID primitive.ObjectID, kind string, payload map[string]string) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipientID,
		Type:        kind,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("insert notification fixture: %v", err)
	}
	return n
}
