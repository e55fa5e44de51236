// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes here are load-bearing: identity resolution and the
membership ledger rely on duplicate-key errors (not check-then-act reads)
to stay correct under concurrent joins and bulk imports.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureIdentities(ctx, db); err != nil {
		problems = append(problems, "identities: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := ensureEmbeddings(ctx, db); err != nil {
		problems = append(problems, "embeddings: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New("index setup failed: " + strings.Join(problems, "; "))
	}
	return nil
}

func ensureIdentities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("identities")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().
				SetName("uniq_phone").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"phone": bson.M{"$exists": true, "$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "company_ci", Value: 1}},
			Options: options.Index().SetName("name_company_ci"),
		},
	})
	return err
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("events")
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organizer_id", Value: 1}, {Key: "starts_at", Value: 1}},
		Options: options.Index().SetName("organizer_starts"),
	})
	return err
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("memberships")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// At most one edge per (event, identity). Partial so legacy rows
			// with no identity_id do not collide with each other.
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "identity_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_event_identity").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"identity_id": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "joined_at", Value: 1}},
			Options: options.Index().SetName("event_joined"),
		},
	})
	return err
}

func ensureEmbeddings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("embeddings")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "category", Value: 1},
				{Key: "subject_key", Value: 1},
			},
			Options: options.Index().SetName("uniq_event_category_subject").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("updated_at"),
		},
	})
	return err
}

// timeout guard for callers that pass an unbounded context at startup.
const ensureTimeout = 30 * time.Second

// EnsureAllWithTimeout wraps EnsureAll with a bounded context.
func EnsureAllWithTimeout(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, ensureTimeout)
	defer cancel()
	return EnsureAll(ctx, db)
}
