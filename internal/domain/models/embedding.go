// internal/domain/models/embedding.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Embedding categories. One vector namespace per (event, category).
const (
	CategoryEventMetadata = "event-metadata"
	CategoryEventDocument = "event-document"
	CategoryMemberProfile = "member-profile"
)

// EmbeddingRecord is one row of the vector index, scoped by
// (event_id, category, subject_key). For member-profile records the subject
// key is the identity id hex and there is at most one live record per
// (event, identity); profile updates replace the record atomically.
//
// Vectors are stored L2-normalized so dot product equals cosine similarity.
type EmbeddingRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID    primitive.ObjectID `bson:"event_id" json:"event_id"`
	Category   string             `bson:"category" json:"category"`
	SubjectKey string             `bson:"subject_key" json:"subject_key"`
	Text       string             `bson:"text" json:"text"`
	Vector     []float32          `bson:"vector" json:"-"`
	Metadata   map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
