// internal/app/store/roster/rosterstore.go

// Package rosterstore produces one deduplicated participant list per event.
//
// Historical membership data exists in four shapes: the memberships
// collection, two legacy collections, and an attendee array embedded on the
// event document. The shapes cannot be unified at write time (the legacy
// collections are read-only to new code), so this package is a read-time
// normalization layer: each shape has its own adapter feeding one in-memory
// dedup pass.
package rosterstore

import (
	"context"

	"github.com/dalemusser/minglehub/internal/app/system/normalize"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Source tags for rows that did not come from the memberships collection.
const (
	sourceLegacyParticipant = "legacy-participant"
	sourceLegacySignup      = "legacy-signup"
	sourceAttendeeArray     = "attendee-array"
)

type Store struct {
	memberships  *mongo.Collection
	participants *mongo.Collection
	signups      *mongo.Collection
	events       *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		memberships:  db.Collection("memberships"),
		participants: db.Collection("event_participants"),
		signups:      db.Collection("event_signups"),
		events:       db.Collection("events"),
	}
}

// membershipRow decodes a memberships document without its event_id, so the
// same decoder works whether the stored event_id is an ObjectID or a raw
// hex string (both encodings exist in historical data).
type membershipRow struct {
	IdentityID *primitive.ObjectID `bson:"identity_id,omitempty"`
	Name       string              `bson:"name,omitempty"`
	Phone      string              `bson:"phone,omitempty"`
	Source     string              `bson:"source,omitempty"`
}

// ListParticipants returns the aggregated roster for the event, sorted by
// name (case-insensitive) with stable ties. It is a pure read: deterministic
// and restartable, and it never fails on an individual malformed record.
func (s *Store) ListParticipants(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantView, error) {
	var rows []ParticipantView

	direct, err := s.loadMemberships(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows = append(rows, direct...)

	legacyA, err := s.loadLegacyParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows = append(rows, legacyA...)

	legacyB, err := s.loadLegacySignups(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows = append(rows, legacyB...)

	embedded, err := s.loadEmbeddedAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows = append(rows, embedded...)

	// Historical writers sometimes stored the event id as its raw hex
	// string. Only when every structured-id query came back empty do we
	// retry the primary source with the string form.
	if len(rows) == 0 {
		stringForm, err := s.loadMembershipsRaw(ctx, eventID.Hex())
		if err != nil {
			return nil, err
		}
		rows = append(rows, stringForm...)
	}

	return merge(rows), nil
}

func (s *Store) loadMemberships(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantView, error) {
	return s.loadMembershipsFilter(ctx, bson.M{"event_id": eventID})
}

func (s *Store) loadMembershipsRaw(ctx context.Context, eventIDHex string) ([]ParticipantView, error) {
	return s.loadMembershipsFilter(ctx, bson.M{"event_id": eventIDHex})
}

func (s *Store) loadMembershipsFilter(ctx context.Context, filter bson.M) ([]ParticipantView, error) {
	cur, err := s.memberships.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ParticipantView
	for cur.Next(ctx) {
		var row membershipRow
		if err := cur.Decode(&row); err != nil {
			continue // malformed record: skip, never fail the roster
		}
		out = append(out, ParticipantView{
			IdentityID: row.IdentityID,
			Name:       row.Name,
			Phone:      normalize.Phone(row.Phone),
			Source:     row.Source,
		})
	}
	return out, cur.Err()
}

func (s *Store) loadLegacyParticipants(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantView, error) {
	cur, err := s.participants.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ParticipantView
	for cur.Next(ctx) {
		var row models.LegacyParticipant
		if err := cur.Decode(&row); err != nil {
			continue
		}
		out = append(out, ParticipantView{
			IdentityID: row.ParticipantID,
			Name:       row.Name,
			Phone:      normalize.Phone(row.Phone),
			Email:      normalize.Email(row.Email),
			Company:    row.Company,
			Bio:        row.Bio,
			Source:     sourceLegacyParticipant,
		})
	}
	return out, cur.Err()
}

func (s *Store) loadLegacySignups(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantView, error) {
	cur, err := s.signups.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ParticipantView
	for cur.Next(ctx) {
		var row models.LegacySignup
		if err := cur.Decode(&row); err != nil {
			continue
		}
		out = append(out, ParticipantView{
			IdentityID: row.User.ID,
			Name:       row.User.Name,
			Phone:      normalize.Phone(row.Phone),
			Email:      normalize.Email(row.User.Email),
			Source:     sourceLegacySignup,
		})
	}
	return out, cur.Err()
}

func (s *Store) loadEmbeddedAttendees(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantView, error) {
	var ev models.Event
	err := s.events.FindOne(ctx, bson.M{"_id": eventID}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]ParticipantView, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		out = append(out, ParticipantView{
			IdentityID: a.IdentityID,
			Name:       a.Name,
			Phone:      normalize.Phone(a.Phone),
			Email:      normalize.Email(a.Email),
			Source:     sourceAttendeeArray,
		})
	}
	return out, nil
}
