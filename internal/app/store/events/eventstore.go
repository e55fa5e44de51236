// internal/app/store/events/eventstore.go

// Package eventstore owns the events collection.
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/minglehub/internal/app/system/normalize"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

var errNameRequired = errors.New("event name is required")

// Create inserts a new event for the organizer.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	ev.Name = normalize.Name(ev.Name)
	if ev.Name == "" {
		return models.Event{}, errNameRequired
	}

	ev.ID = primitive.NewObjectID()
	ev.NameCI = text.Fold(ev.Name)

	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// GetByID loads an event by ObjectID. Returns mongo.ErrNoDocuments if the
// event does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var ev models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateInfo rewrites the describable fields of an event and returns the
// fresh document.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, description, location string, startsAt time.Time) (*models.Event, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if n := normalize.Name(name); n != "" {
		set["name"] = n
		set["name_ci"] = text.Fold(n)
	}
	if description != "" {
		set["description"] = description
	}
	if location != "" {
		set["location"] = location
	}
	if !startsAt.IsZero() {
		set["starts_at"] = startsAt
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}
