// internal/domain/models/opportunity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Opportunity is a course or exam session offered by a mentor. The lifecycle
// engine only reads opportunities; catalog CRUD lives elsewhere.
type Opportunity struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MentorID primitive.ObjectID `bson:"mentor_id,omitempty" json:"mentor_id,omitempty"` // zero when unassigned

	Title     string    `bson:"title" json:"title"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	StartDate time.Time `bson:"start_date" json:"start_date"`
	Fee       int64     `bson:"fee" json:"fee"` // minor units

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMentor reports whether a mentor has been assigned to this opportunity.
func (o *Opportunity) HasMentor() bool {
	return !o.MentorID.IsZero()
}
