// internal/app/features/assistant/handler.go
package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/minglehub/internal/app/assist"
	"github.com/dalemusser/minglehub/internal/app/features/shared"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	"github.com/dalemusser/minglehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxQuestionRunes bounds a single question; anything longer is noise or
// pasted text the retrieval pipeline shouldn't chew on.
const maxQuestionRunes = 500

// Handler serves the in-event assistant.
type Handler struct {
	Events    *eventstore.Store
	Responder *assist.Responder
	Log       *zap.Logger
}

func NewHandler(events *eventstore.Store, responder *assist.Responder, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Responder: responder, Log: logger}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	ExchangeID string          `json:"exchange_id"`
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Intent     assist.Intent   `json:"intent"`
	Sources    []assist.Source `json:"sources,omitempty"`
}

// ServeAsk handles POST /events/{eventID}/ask. The responder absorbs every
// downstream failure, so this handler only errors on bad input or a missing
// event.
func (h *Handler) ServeAsk(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req askRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		shared.Error(w, http.StatusBadRequest, "question must not be empty")
		return
	}
	if runes := []rune(question); len(runes) > maxQuestionRunes {
		question = string(runes[:maxQuestionRunes])
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("event load failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not load event")
		return
	}

	result := h.Responder.Answer(ctx, ev, question)

	shared.JSON(w, http.StatusOK, askResponse{
		ExchangeID: uuid.NewString(),
		Question:   question,
		Answer:     result.Answer,
		Intent:     result.Intent,
		Sources:    result.Sources,
	})
}
