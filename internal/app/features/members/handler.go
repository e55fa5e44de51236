// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/minglehub/internal/app/assist"
	"github.com/dalemusser/minglehub/internal/app/features/shared"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	identitystore "github.com/dalemusser/minglehub/internal/app/store/identities"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	rosterstore "github.com/dalemusser/minglehub/internal/app/store/roster"
	"github.com/dalemusser/minglehub/internal/app/system/timeouts"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves membership endpoints: join, manual add, spreadsheet
// import, roster listing, profile update, and removal.
type Handler struct {
	Events      *eventstore.Store
	Identities  *identitystore.Store
	Memberships *membershipstore.Store
	Roster      *rosterstore.Store
	Indexer     *assist.Indexer
	Log         *zap.Logger
}

func NewHandler(events *eventstore.Store, identities *identitystore.Store, memberships *membershipstore.Store, roster *rosterstore.Store, indexer *assist.Indexer, logger *zap.Logger) *Handler {
	return &Handler{
		Events:      events,
		Identities:  identities,
		Memberships: memberships,
		Roster:      roster,
		Indexer:     indexer,
		Log:         logger,
	}
}

// personRequest is the JSON shape for join and manual-add bodies.
type personRequest struct {
	Name        string `json:"name,omitempty"`
	FounderName string `json:"founder_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Website     string `json:"website,omitempty"`
	RoleTag     string `json:"role_tag,omitempty"`
}

func (p personRequest) input() identitystore.PersonInput {
	return identitystore.PersonInput{
		Name:        p.Name,
		FounderName: p.FounderName,
		Email:       p.Email,
		Phone:       p.Phone,
		Company:     p.Company,
		Bio:         p.Bio,
		Website:     p.Website,
		RoleTag:     p.RoleTag,
	}
}

// memberResponse reports the outcome of one resolve-and-add.
type memberResponse struct {
	Identity      models.Identity `json:"identity"`
	NewIdentity   bool            `json:"new_identity"`
	AlreadyMember bool            `json:"already_member"`
}

// ServeJoin handles POST /events/{eventID}/join (source self-join).
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	h.resolveAndAdd(w, r, models.SourceSelfJoin)
}

// ServeAdd handles POST /events/{eventID}/members (source manual).
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	h.resolveAndAdd(w, r, models.SourceManual)
}

// resolveAndAdd is the shared join/manual-add path: resolve the person to
// an identity, then record the membership edge. A duplicate edge is a
// success with already_member set, per the ledger's no-op semantics.
func (h *Handler) resolveAndAdd(w http.ResponseWriter, r *http.Request, source string) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	var req personRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	ident, isNew, err := h.Identities.Resolve(ctx, req.input())
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	resp := memberResponse{Identity: ident, NewIdentity: isNew}
	if _, err := h.Memberships.Add(ctx, ev.ID, ev.OrganizerID, ident, source); err != nil {
		if errors.Is(err, membershipstore.ErrAlreadyMember) {
			resp.AlreadyMember = true
			shared.JSON(w, http.StatusOK, resp)
			return
		}
		h.Log.Error("membership add failed",
			zap.String("event_id", ev.ID.Hex()),
			zap.String("identity_id", ident.ID.Hex()),
			zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not record membership")
		return
	}

	shared.JSON(w, http.StatusCreated, resp)
}

// ServeList handles GET /events/{eventID}/members: the aggregated,
// deduplicated roster across all historical storage shapes.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	participants, err := h.Roster.ListParticipants(ctx, ev.ID)
	if err != nil {
		h.Log.Error("roster aggregation failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not load roster")
		return
	}

	shared.JSON(w, http.StatusOK, map[string]any{
		"participants": participants,
		"count":        len(participants),
	})
}

// ServeRemove handles DELETE /events/{eventID}/members/{identityID}.
// Removing a non-member is a success; the operation is idempotent.
func (h *Handler) ServeRemove(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}
	identityID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "identityID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid identity id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Memberships.Remove(ctx, eventID, identityID); err != nil {
		h.Log.Error("membership remove failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("identity_id", identityID.Hex()),
			zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// profileRequest is the JSON shape for profile updates. Contact fields are
// deliberately absent: email and phone are fixed at resolution time.
type profileRequest struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Website string `json:"website,omitempty"`
	RoleTag string `json:"role_tag,omitempty"`
}

// ServeUpdateProfile handles PATCH /events/{eventID}/members/{identityID}:
// updates the member's profile fields and refreshes their profile embedding
// for this event.
func (h *Handler) ServeUpdateProfile(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseEventID(w, r)
	if !ok {
		return
	}
	identityID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "identityID"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid identity id")
		return
	}

	var req profileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	if _, err := h.Memberships.GetEdge(ctx, eventID, identityID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "identity is not a member of this event")
			return
		}
		h.Log.Error("membership lookup failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not load membership")
		return
	}

	ident, err := h.Identities.UpdateProfile(ctx, identityID, identitystore.ProfileUpdate{
		FullName: req.Name,
		Company:  req.Company,
		Bio:      req.Bio,
		Website:  req.Website,
		RoleTag:  req.RoleTag,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			shared.Error(w, http.StatusNotFound, "identity not found")
			return
		}
		h.Log.Error("profile update failed", zap.String("identity_id", identityID.Hex()), zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	go func(ev primitive.ObjectID, ident models.Identity) {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long)
		defer cancel()
		h.Indexer.IndexMemberProfile(ctx, ev, ident)
	}(eventID, *ident)

	shared.JSON(w, http.StatusOK, ident)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identitystore.ErrNameRequired):
		shared.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identitystore.ErrPhoneSpaceExhausted):
		shared.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.Log.Error("identity resolution failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "could not resolve identity")
	}
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
