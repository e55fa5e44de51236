// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a networking event owned by an organizer.
//
// Attendees is a legacy embedded array kept for backward compatibility with
// data written before the memberships collection existed. New code never
// appends to it; the roster aggregator still reads it.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID primitive.ObjectID `bson:"organizer_id" json:"organizer_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	StartsAt    time.Time          `bson:"starts_at,omitempty" json:"starts_at,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`

	Attendees []EmbeddedAttendee `bson:"attendees,omitempty" json:"attendees,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EmbeddedAttendee is the legacy attendee shape embedded on Event documents.
type EmbeddedAttendee struct {
	IdentityID *primitive.ObjectID `bson:"identity_id,omitempty" json:"identity_id,omitempty"`
	Name       string              `bson:"name,omitempty" json:"name,omitempty"`
	Phone      string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Email      string              `bson:"email,omitempty" json:"email,omitempty"`
}
