// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership sources. Every edge records which intake path created it.
const (
	SourceSelfJoin    = "self-join"
	SourceManual      = "manual"
	SourceSpreadsheet = "spreadsheet"
)

// MembershipEdge ties one Identity to one Event, with provenance.
// Exactly one document per (event_id, identity_id) with a non-nil
// identity_id; the unique partial index enforces this under concurrency.
//
// Name and Phone are snapshots taken at join time so the roster stays
// readable even if the identity record changes later. Edges are created and
// deleted, never updated.
type MembershipEdge struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID  `bson:"event_id" json:"event_id"`
	OrganizerID primitive.ObjectID  `bson:"organizer_id" json:"organizer_id"`
	IdentityID  *primitive.ObjectID `bson:"identity_id,omitempty" json:"identity_id,omitempty"` // nil only on legacy unmatched rows
	Name        string              `bson:"name" json:"name"`
	Phone       string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Source      string              `bson:"source" json:"source"`
	JoinedAt    time.Time           `bson:"joined_at" json:"joined_at"`
}

// LegacyParticipant is historical membership variant A (event_participants
// collection). It is keyed by participant_id rather than identity_id, and
// its event_id may be stored as either an ObjectID or a raw hex string.
// Read-only: new code never writes this shape.
type LegacyParticipant struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	ParticipantID *primitive.ObjectID `bson:"participant_id,omitempty"`
	Name          string              `bson:"name,omitempty"`
	Phone         string              `bson:"phone,omitempty"`
	Email         string              `bson:"email,omitempty"`
	Company       string              `bson:"company,omitempty"`
	Bio           string              `bson:"bio,omitempty"`
}

// LegacySignup is historical membership variant B (event_signups
// collection), written by an early self-signup flow. Read-only.
type LegacySignup struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	User       LegacySignupUser   `bson:"user"`
	Phone      string             `bson:"phone,omitempty"`
	SignedUpAt time.Time          `bson:"signed_up_at,omitempty"`
}

// LegacySignupUser is the embedded user reference inside a LegacySignup.
type LegacySignupUser struct {
	ID    *primitive.ObjectID `bson:"id,omitempty"`
	Name  string              `bson:"name,omitempty"`
	Email string              `bson:"email,omitempty"`
}
