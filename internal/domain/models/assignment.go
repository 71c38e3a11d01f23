// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCharged   AssignmentStatus = "charged"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentCanceled  AssignmentStatus = "canceled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s AssignmentStatus) Terminal() bool {
	switch s {
	case AssignmentCompleted, AssignmentRejected, AssignmentCanceled:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentActive,
		AssignmentCharged, AssignmentCompleted, AssignmentRejected, AssignmentCanceled:
		return true
	}
	return false
}

// Prerequisite verification methods.
const (
	PrereqMethodExternalCheck     = "external-check"
	PrereqMethodManualAttestation = "manual-attestation"
)

// Prerequisites records how a mentee's eligibility was established at
// creation time. Immutable once set.
type Prerequisites struct {
	Verified   bool       `bson:"verified" json:"verified"`
	Method     string     `bson:"method" json:"method"` // external-check | manual-attestation
	VerifiedAt *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	SignedAt   *time.Time `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
}

// Agreements holds opaque signature payloads. Write-once.
type Agreements struct {
	MenteeSignature      string `bson:"mentee_signature" json:"mentee_signature"`
	CounterpartSignature string `bson:"counterpart_signature,omitempty" json:"counterpart_signature,omitempty"`
}

// Assignment is a mentee's application-turned-engagement with a mentor for a
// specific opportunity.
//
// MentorID is copied from the opportunity at creation time and never
// re-derived. FeeSnapshot is the fee in minor currency units (cents) captured
// at creation; it is immutable afterward so later price changes on the
// opportunity cannot alter what the mentee owes.
type Assignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MenteeID      primitive.ObjectID `bson:"mentee_id" json:"mentee_id"`
	MentorID      primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`
	OpportunityID primitive.ObjectID `bson:"opportunity_id" json:"opportunity_id"`

	FeeSnapshot int64     `bson:"fee_snapshot" json:"fee_snapshot"` // minor units, >= 0
	StartDate   time.Time `bson:"start_date" json:"start_date"`

	Prerequisites Prerequisites `bson:"prerequisites" json:"prerequisites"`
	Agreements    Agreements    `bson:"agreements" json:"agreements"`

	// PaymentAuthorizationID references the held charge at the payment
	// authority. Present once a fee > 0 has been authorized.
	PaymentAuthorizationID string `bson:"payment_authorization_id,omitempty" json:"payment_authorization_id,omitempty"`

	Status AssignmentStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
