// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/minglehub/internal/app/assist"
	"github.com/dalemusser/minglehub/internal/app/features/shared"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	"github.com/dalemusser/minglehub/internal/app/system/timeouts"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves event CRUD and document-text intake.
type Handler struct {
	Events  *eventstore.Store
	Indexer *assist.Indexer
	Log     *zap.Logger
}

func NewHandler(events *eventstore.Store, indexer *assist.Indexer, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Indexer: indexer, Log: logger}
}

type eventRequest struct {
	OrganizerID string `json:"organizer_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"` // RFC 3339
}

// ServeCreate handles POST /events.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ev := models.Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.OrganizerID != "" {
		oid, err := primitive.ObjectIDFromHex(req.OrganizerID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid organizer_id")
			return
		}
		ev.OrganizerID = oid
	} else {
		ev.OrganizerID = primitive.NewObjectID()
	}
	if req.StartsAt != "" {
		ts, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "starts_at must be RFC 3339")
			return
		}
		ev.StartsAt = ts
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	created, err := h.Events.Create(ctx, ev)
	if err != nil {
		h.Log.Error("event create failed", zap.Error(err))
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.indexMetadataAsync(created)
	shared.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /events/{eventID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	shared.JSON(w, http.StatusOK, ev)
}

// ServeUpdate handles PUT /events/{eventID}. Only the describable fields
// change; membership and embeddings for documents are untouched, but the
// event-metadata embedding is refreshed.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var startsAt time.Time
	if req.StartsAt != "" {
		ts, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "starts_at must be RFC 3339")
			return
		}
		startsAt = ts
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	ev, err := h.Events.UpdateInfo(ctx, eventID, req.Name, req.Description, req.Location, startsAt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("event update failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not update event")
		return
	}

	h.indexMetadataAsync(*ev)
	shared.JSON(w, http.StatusOK, ev)
}

type documentsRequest struct {
	Title  string   `json:"title,omitempty"`
	Chunks []string `json:"chunks"`
}

type documentsResponse struct {
	DocumentKey string `json:"document_key"`
	Indexed     int    `json:"indexed"`
	Skipped     int    `json:"skipped"`
}

// ServeDocuments handles POST /events/{eventID}/documents: pre-extracted
// document text chunks get embedded under the event-document category.
// A chunk that fails to embed is counted as skipped, never an error.
func (h *Handler) ServeDocuments(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	var req documentsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Chunks) == 0 {
		shared.Error(w, http.StatusBadRequest, "chunks must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch)
	defer cancel()

	docKey := uuid.NewString()
	resp := documentsResponse{DocumentKey: docKey}
	for i, chunk := range req.Chunks {
		key := fmt.Sprintf("%s:%04d", docKey, i)
		if h.Indexer.IndexEventDocument(ctx, ev.ID, key, chunk) {
			resp.Indexed++
		} else {
			resp.Skipped++
		}
	}

	shared.JSON(w, http.StatusOK, resp)
}

// indexMetadataAsync refreshes the event-metadata embedding without holding
// up the response. Best-effort: the Indexer logs its own failures.
func (h *Handler) indexMetadataAsync(ev models.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long)
		defer cancel()
		h.Indexer.IndexEventMetadata(ctx, ev)
	}()
}

func parseEventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid event id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) loadEvent(w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
	eventID, ok := parseEventID(w, r)
	if !ok {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "event not found")
			return nil, false
		}
		h.Log.Error("event load failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not load event")
		return nil, false
	}
	return ev, true
}
