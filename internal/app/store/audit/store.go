// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryLifecycle = "lifecycle"
	CategoryPayment   = "payment"
)

// Lifecycle event types
const (
	EventAssignmentCreated   = "assignment_created"
	EventAssignmentAccepted  = "assignment_accepted"
	EventAssignmentRejected  = "assignment_rejected"
	EventAssignmentCanceled  = "assignment_canceled"
	EventAssignmentCompleted = "assignment_completed"
)

// Payment event types
const (
	EventAuthorizationPlaced   = "authorization_placed"
	EventCompensationFailed    = "compensation_failed"
	EventCompensationSucceeded = "compensation_succeeded"
)

// Event represents one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// What
	AssignmentID *primitive.ObjectID `bson:"assignment_id,omitempty"`
	MenteeID     *primitive.ObjectID `bson:"mentee_id,omitempty"`
	MentorID     *primitive.ObjectID `bson:"mentor_id,omitempty"`

	// AuthorizationID is the payment authority's hold id, when the event
	// involves one.
	AuthorizationID string `bson:"authorization_id,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	AssignmentID *primitive.ObjectID
	Category     string
	EventType    string
	StartTime    *time.Time
	EndTime      *time.Time
	Limit        int64
	Offset       int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Query by time range (most recent first)
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		// Query by assignment
		{
			Keys: bson.D{
				{Key: "assignment_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by event type
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}

	if filter.AssignmentID != nil {
		query["assignment_id"] = filter.AssignmentID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}

	// Time range
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["timestamp"] = timeQuery
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByAssignment retrieves the audit trail of a single assignment.
func (s *Store) GetByAssignment(ctx context.Context, assignmentID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		AssignmentID: &assignmentID,
		Limit:        limit,
	})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		Limit: limit,
	})
}

// GetCompensationFailures retrieves failed compensating cancels since the
// given time. These are the holds an operator has to reconcile by hand.
func (s *Store) GetCompensationFailures(ctx context.Context, since time.Time, limit int64) ([]Event, error) {
	query := bson.M{
		"category":   CategoryPayment,
		"event_type": EventCompensationFailed,
		"success":    false,
		"timestamp":  bson.M{"$gte": since},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
