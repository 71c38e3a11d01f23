// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a persisted lifecycle event addressed to one user.
//
// Payload snapshots display fields (names, avatars, titles, prices) at send
// time so the notification stays meaningful even if the referenced entities
// later change. The one exception is the embedded assignment status, which
// the lifecycle engine patches when the assignment transitions.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type        string             `bson:"type" json:"type"`
	Payload     map[string]string  `bson:"payload,omitempty" json:"payload,omitempty"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
