// internal/app/store/embeddings/embeddingstore.go

// Package embeddingstore owns the embeddings collection: the vector index
// scoped by (event, category, subject key).
//
// Search is brute-force exact cosine similarity computed in process over the
// candidates for one (event, category) scope. Scopes are small (an event's
// member profiles and a handful of document chunks), so exact scoring is
// both simpler and better-ranked than an approximate index would be.
package embeddingstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/minglehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("embeddings")}
}

// Match is one scored search hit.
type Match struct {
	Record models.EmbeddingRecord
	Score  float64
}

// Upsert stores the record for (event, category, subject key), replacing any
// prior record for that key. The vector is normalized on write.
func (s *Store) Upsert(ctx context.Context, rec models.EmbeddingRecord) error {
	rec.Vector = l2normalize(rec.Vector)
	rec.UpdatedAt = time.Now().UTC()

	filter := bson.M{
		"event_id":    rec.EventID,
		"category":    rec.Category,
		"subject_key": rec.SubjectKey,
	}
	update := bson.M{
		"$set": bson.M{
			"text":       rec.Text,
			"vector":     rec.Vector,
			"metadata":   rec.Metadata,
			"updated_at": rec.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"event_id":    rec.EventID,
			"category":    rec.Category,
			"subject_key": rec.SubjectKey,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Delete removes the record for (event, category, subject key). Deleting an
// absent record is not an error.
func (s *Store) Delete(ctx context.Context, eventID primitive.ObjectID, category, subjectKey string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{
		"event_id":    eventID,
		"category":    category,
		"subject_key": subjectKey,
	})
	return err
}

// Query returns up to limit records in the (event, category) scope whose
// cosine similarity to the query vector is at least minSimilarity, ranked
// best first.
func (s *Store) Query(ctx context.Context, vector []float32, eventID primitive.ObjectID, category string, limit int, minSimilarity float64) ([]Match, error) {
	if limit <= 0 {
		limit = 10
	}
	query := l2normalize(vector)

	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID, "category": category})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var matches []Match
	for cur.Next(ctx) {
		var rec models.EmbeddingRecord
		if err := cur.Decode(&rec); err != nil {
			continue
		}
		if len(rec.Vector) != len(query) {
			continue
		}
		score := dot(query, rec.Vector)
		if score < minSimilarity {
			continue
		}
		matches = append(matches, Match{Record: rec, Score: score})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// DeleteForEvent clears every record for an event. Used when an event is
// torn down.
func (s *Store) DeleteForEvent(ctx context.Context, eventID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	return err
}
