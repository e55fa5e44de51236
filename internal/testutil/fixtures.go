package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEvent inserts a test event and returns it with its generated ID.
func (f *Fixtures) CreateEvent(ctx context.Context, name string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:          primitive.NewObjectID(),
		OrganizerID: primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Location:    "Test Hall",
		StartsAt:    now.Add(24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("insert test event: %v", err)
	}
	return ev
}

// CreateIdentity inserts a test identity. Email and phone must be unique
// within the test database; the caller picks them.
func (f *Fixtures) CreateIdentity(ctx context.Context, name, email, phone string) models.Identity {
	f.t.Helper()

	now := time.Now().UTC()
	ident := models.Identity{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		Phone:      phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("identities").InsertOne(ctx, ident); err != nil {
		f.t.Fatalf("insert test identity: %v", err)
	}
	return ident
}

// InsertLegacyParticipant writes a raw event_participants row. eventID may
// be a primitive.ObjectID or a hex string, matching what historical writers
// actually stored.
func (f *Fixtures) InsertLegacyParticipant(ctx context.Context, eventID any, name, phone, email string) {
	f.t.Helper()

	doc := bson.M{"event_id": eventID}
	if name != "" {
		doc["name"] = name
	}
	if phone != "" {
		doc["phone"] = phone
	}
	if email != "" {
		doc["email"] = email
	}
	if _, err := f.db.Collection("event_participants").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert legacy participant: %v", err)
	}
}

// InsertLegacySignup writes a raw event_signups row with the embedded user
// document shape.
func (f *Fixtures) InsertLegacySignup(ctx context.Context, eventID any, name, email, phone string) {
	f.t.Helper()

	user := bson.M{}
	if name != "" {
		user["name"] = name
	}
	if email != "" {
		user["email"] = email
	}
	doc := bson.M{
		"event_id":     eventID,
		"user":         user,
		"signed_up_at": time.Now().UTC(),
	}
	if phone != "" {
		doc["phone"] = phone
	}
	if _, err := f.db.Collection("event_signups").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert legacy signup: %v", err)
	}
}

// SetEmbeddedAttendees rewrites the legacy attendees array on an event.
func (f *Fixtures) SetEmbeddedAttendees(ctx context.Context, eventID primitive.ObjectID, attendees []models.EmbeddedAttendee) {
	f.t.Helper()

	if _, err := f.db.Collection("events").UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"attendees": attendees}},
	); err != nil {
		f.t.Fatalf("set embedded attendees: %v", err)
	}
}
