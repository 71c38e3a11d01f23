// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents mentors and mentees. The lifecycle engine only reads users
// to validate existence and copy denormalized display fields; profile
// management lives elsewhere.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"full_name" json:"full_name"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"` // mentor | mentee
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
