// internal/app/store/users/userstore.go

// Package userstore is a read-only view of user records. The lifecycle
// engine uses it to validate that a mentee exists and to copy denormalized
// display fields (name, avatar) into notification payloads. Profile
// management is owned by another subsystem.
package userstore

import (
	"context"
	"errors"

	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound means no user exists with the given id.
var ErrNotFound = errors.New("user not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads one user.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
