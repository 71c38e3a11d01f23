// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound means no notification exists with the given id.
var ErrNotFound = errors.New("notification not found")

// Store owns all writes to the notifications collection. Rows are
// append-only apart from the read flag and the embedded assignment status;
// nothing here ever deletes.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert persists one notification. ID and CreatedAt are assigned here.
func (s *Store) Insert(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now().UTC()
	n.Read = false

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first. limit <= 0 means
// no limit.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips the read flag on one notification.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flips the read flag on every unread notification for a user.
// Returns the number of notifications updated.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// SetAssignmentStatus patches the denormalized status field embedded in every
// notification that references the assignment. This is the one sanctioned
// mutation of a historical payload: all other snapshot fields stay frozen at
// send time. Returns the number of notifications patched.
func (s *Store) SetAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status models.AssignmentStatus) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"payload.assignment_id": assignmentID.Hex()},
		bson.M{"$set": bson.M{"payload.status": string(status)}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
