// internal/app/store/opportunities/opportunitystore.go

// Package opportunitystore is a read-only view of the opportunity catalog.
// The lifecycle engine uses it to validate existence and to copy the mentor
// id and denormalized display fields at assignment creation time. Catalog
// CRUD is owned by another subsystem.
package opportunitystore

import (
	"context"
	"errors"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound means no opportunity exists with the given id.
var ErrNotFound = errors.New("opportunity not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("opportunities")}
}

// GetByID loads one opportunity.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Opportunity, error) {
	var o models.Opportunity
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return models.Opportunity{}, ErrNotFound
	}
	if err != nil {
		return models.Opportunity{}, err
	}
	return o, nil
}
