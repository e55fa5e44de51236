// internal/app/store/memberships/membershipstore.go

// Package membershipstore owns the memberships collection: the ledger of
// which identity participates in which event.
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/minglehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection

	// Post-commit hooks. Set once at wiring time, before the store is
	// shared across requests. Both run in their own goroutine with their
	// own context: a hook failure can never roll back the ledger write.
	afterAdd    func(eventID primitive.ObjectID, ident models.Identity)
	afterRemove func(eventID, identityID primitive.ObjectID)
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// ErrAlreadyMember signals that an edge already exists for the
// (event, identity) pair. It is a no-op success, not a failure: bulk
// imports and racing joins rely on treating it that way.
var ErrAlreadyMember = errors.New("identity is already a member of this event")

// SetAfterAdd registers the fire-and-forget hook invoked after every
// successful Add (used for the best-effort profile embedding refresh).
func (s *Store) SetAfterAdd(hook func(eventID primitive.ObjectID, ident models.Identity)) {
	s.afterAdd = hook
}

// SetAfterRemove registers the hook invoked after every Remove.
func (s *Store) SetAfterRemove(hook func(eventID, identityID primitive.ObjectID)) {
	s.afterRemove = hook
}

// Add records that the identity participates in the event. There is no
// prior existence check: the unique (event_id, identity_id) index is the
// arbiter, so concurrent adds of the same pair resolve to one edge plus
// ErrAlreadyMember for the losers.
func (s *Store) Add(ctx context.Context, eventID, organizerID primitive.ObjectID, ident models.Identity, source string) (models.MembershipEdge, error) {
	edge := models.MembershipEdge{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		OrganizerID: organizerID,
		IdentityID:  &ident.ID,
		Name:        ident.FullName,
		Phone:       ident.Phone,
		Source:      source,
		JoinedAt:    time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, edge); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MembershipEdge{}, ErrAlreadyMember
		}
		return models.MembershipEdge{}, err
	}

	if s.afterAdd != nil {
		go s.afterAdd(eventID, ident)
	}
	return edge, nil
}

// Remove deletes the edge for (eventID, identityID). Removing an absent
// edge is not an error.
func (s *Store) Remove(ctx context.Context, eventID, identityID primitive.ObjectID) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID, "identity_id": identityID}); err != nil {
		return err
	}
	if s.afterRemove != nil {
		go s.afterRemove(eventID, identityID)
	}
	return nil
}

// CountForEvent returns the number of edges for the event. Used by the
// assistant's direct-count answer path.
func (s *Store) CountForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// GetEdge loads the edge for (eventID, identityID).
// Returns mongo.ErrNoDocuments if the identity is not a member.
func (s *Store) GetEdge(ctx context.Context, eventID, identityID primitive.ObjectID) (*models.MembershipEdge, error) {
	var edge models.MembershipEdge
	if err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "identity_id": identityID}).Decode(&edge); err != nil {
		return nil, err
	}
	return &edge, nil
}

// ListForEvent returns the raw edges for an event in join order. The roster
// aggregator is the deduplicating read; this is the plain ledger view.
func (s *Store) ListForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.MembershipEdge, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var edges []models.MembershipEdge
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}
