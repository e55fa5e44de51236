// internal/app/assist/indexer.go
package assist

import (
	"context"

	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	"github.com/dalemusser/minglehub/internal/app/system/ai"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Indexer maintains the vector index. Every method is best-effort: failures
// are logged and reported as false, never raised, because indexing runs
// behind ledger writes that must not be rolled back by embedding trouble.
type Indexer struct {
	embeddings *embeddingstore.Store
	embedder   ai.Embedder
	log        *zap.Logger
}

func NewIndexer(embeddings *embeddingstore.Store, embedder ai.Embedder, logger *zap.Logger) *Indexer {
	return &Indexer{embeddings: embeddings, embedder: embedder, log: logger}
}

// IndexMemberProfile embeds the identity's profile text and upserts the
// member-profile record for (event, identity). Returns whether a record was
// written. The phone number travels only in metadata, never in the text.
func (ix *Indexer) IndexMemberProfile(ctx context.Context, eventID primitive.ObjectID, ident models.Identity) bool {
	text := BuildProfileText(ident)
	if text == "" {
		return false
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		ix.log.Warn("member profile embedding failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("identity_id", ident.ID.Hex()),
			zap.Error(err))
		return false
	}

	rec := models.EmbeddingRecord{
		EventID:    eventID,
		Category:   models.CategoryMemberProfile,
		SubjectKey: ident.ID.Hex(),
		Text:       text,
		Vector:     vec,
		Metadata: map[string]string{
			"identity_id": ident.ID.Hex(),
			"name":        ident.FullName,
			"phone":       ident.Phone,
		},
	}
	if err := ix.embeddings.Upsert(ctx, rec); err != nil {
		ix.log.Warn("member profile upsert failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("identity_id", ident.ID.Hex()),
			zap.Error(err))
		return false
	}
	return true
}

// DeindexMemberProfile drops the member-profile record for the identity.
func (ix *Indexer) DeindexMemberProfile(ctx context.Context, eventID, identityID primitive.ObjectID) {
	if err := ix.embeddings.Delete(ctx, eventID, models.CategoryMemberProfile, identityID.Hex()); err != nil {
		ix.log.Warn("member profile deindex failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("identity_id", identityID.Hex()),
			zap.Error(err))
	}
}

// IndexEventMetadata embeds the event's descriptive fields under the
// event-metadata category.
func (ix *Indexer) IndexEventMetadata(ctx context.Context, ev models.Event) bool {
	text := BuildEventText(ev)
	if text == "" {
		return false
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		ix.log.Warn("event metadata embedding failed",
			zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		return false
	}

	rec := models.EmbeddingRecord{
		EventID:    ev.ID,
		Category:   models.CategoryEventMetadata,
		SubjectKey: "metadata",
		Text:       text,
		Vector:     vec,
		Metadata:   map[string]string{"name": ev.Name},
	}
	if err := ix.embeddings.Upsert(ctx, rec); err != nil {
		ix.log.Warn("event metadata upsert failed",
			zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		return false
	}
	return true
}

// IndexEventDocument embeds one extracted document chunk under the
// event-document category. chunkKey distinguishes chunks of the same upload.
func (ix *Indexer) IndexEventDocument(ctx context.Context, eventID primitive.ObjectID, chunkKey, text string) bool {
	text = CleanText(text)
	if text == "" {
		return false
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		ix.log.Warn("event document embedding failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("chunk", chunkKey),
			zap.Error(err))
		return false
	}

	rec := models.EmbeddingRecord{
		EventID:    eventID,
		Category:   models.CategoryEventDocument,
		SubjectKey: chunkKey,
		Text:       text,
		Vector:     vec,
	}
	if err := ix.embeddings.Upsert(ctx, rec); err != nil {
		ix.log.Warn("event document upsert failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("chunk", chunkKey),
			zap.Error(err))
		return false
	}
	return true
}
