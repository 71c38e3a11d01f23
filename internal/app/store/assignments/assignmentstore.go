// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/txn"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound means no assignment exists with the given id.
	ErrNotFound = errors.New("assignment not found")

	// ErrDuplicateAssignment means the mentee already has an assignment for
	// this opportunity. Raised by the unique (mentee_id, opportunity_id)
	// index, which is what closes the window between concurrent creates.
	ErrDuplicateAssignment = errors.New("mentee already has an assignment for this opportunity")

	// ErrStatusConflict means the conditional status update matched no
	// document in the expected state: either the assignment is gone or a
	// concurrent transition won.
	ErrStatusConflict = errors.New("assignment is not in the expected status")
)

// Store owns all writes to the assignments collection.
type Store struct {
	client *mongo.Client
	c      *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		c:      db.Collection("assignments"),
	}
}

// WithTransaction runs fn inside a multi-document transaction scope with
// guaranteed commit-or-abort on every exit path. The context passed to fn
// must be used for all operations that should join the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.WithTransaction(ctx, s.client, fn)
}

// Insert creates a new assignment document. ID and timestamps are assigned
// here. Duplicate (mentee, opportunity) pairs map to ErrDuplicateAssignment.
func (s *Store) Insert(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Assignment{}, ErrDuplicateAssignment
		}
		return models.Assignment{}, err
	}
	return a, nil
}

// GetByID loads one assignment.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Assignment{}, ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// CompareAndSetStatus transitions id from expected to next in a single atomic
// conditional update. It never reads first: the filter carries the expected
// status, so among racing transition attempts at most one can match. The
// losers get ErrStatusConflict.
//
// extra fields (if any) are $set alongside status and updated_at.
func (s *Store) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, expected, next models.AssignmentStatus, extra map[string]any) error {
	set := bson.M{
		"status":     next,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		set[k] = v
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ListByMentor returns a mentor's assignments, newest first, optionally
// filtered by status. skip/limit page the result; limit <= 0 means no limit.
func (s *Store) ListByMentor(ctx context.Context, mentorID primitive.ObjectID, status models.AssignmentStatus, skip, limit int64) ([]models.Assignment, error) {
	filter := bson.M{"mentor_id": mentorID}
	if status != "" {
		filter["status"] = status
	}
	return s.list(ctx, filter, skip, limit)
}

// ListByMentee returns a mentee's assignments, newest first. skip/limit page
// the result; limit <= 0 means no limit.
func (s *Store) ListByMentee(ctx context.Context, menteeID primitive.ObjectID, skip, limit int64) ([]models.Assignment, error) {
	return s.list(ctx, bson.M{"mentee_id": menteeID}, skip, limit)
}

// FindByMenteeAndOpportunity looks up the single assignment for a
// (mentee, opportunity) pair, if any.
func (s *Store) FindByMenteeAndOpportunity(ctx context.Context, menteeID, opportunityID primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"mentee_id": menteeID, "opportunity_id": opportunityID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Assignment{}, ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// ListSettledWithAuthorization returns assignments that reached a settled
// status (charged, completed, rejected, canceled) while holding a payment
// authorization, updated at or after since. The reconciliation worker walks
// these to verify the authority's view of each hold.
func (s *Store) ListSettledWithAuthorization(ctx context.Context, since time.Time) ([]models.Assignment, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.AssignmentStatus{
			models.AssignmentCharged,
			models.AssignmentCompleted,
			models.AssignmentRejected,
			models.AssignmentCanceled,
		}},
		"payment_authorization_id": bson.M{"$gt": ""},
		"updated_at":               bson.M{"$gte": since},
	}
	return s.list(ctx, filter, 0, 0)
}

// CountByMentorAndStatus returns how many of a mentor's assignments are in
// the given status. Used by dashboard panes.
func (s *Store) CountByMentorAndStatus(ctx context.Context, mentorID primitive.ObjectID, status models.AssignmentStatus) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"mentor_id": mentorID, "status": status})
}

func (s *Store) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
