package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/minglehub/internal/app/assist"
	eventsfeature "github.com/dalemusser/minglehub/internal/app/features/events"
	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	"github.com/dalemusser/minglehub/internal/app/system/ai"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/minglehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *eventsfeature.Handler {
	logger := zap.NewNop()
	indexer := assist.NewIndexer(embeddingstore.New(db), ai.NewClient(ai.Config{}, logger), logger)
	return eventsfeature.NewHandler(eventstore.New(db), indexer, logger)
}

func TestServeCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	body := `{"name":"Founder Mixer","location":"Pune","starts_at":"2026-03-14T18:30:00Z"}`
	req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var created models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse created event: %v", err)
	}
	if created.Name != "Founder Mixer" || created.Location != "Pune" || created.ID.IsZero() {
		t.Errorf("created event: %+v", created)
	}

	req = httptest.NewRequest("GET", "/events/"+created.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "eventID", created.ID.Hex())
	rec = httptest.NewRecorder()

	h.ServeGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rec.Code)
	}
	var got models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse fetched event: %v", err)
	}
	if got.ID != created.ID || got.Name != created.Name {
		t.Errorf("fetched event does not match created: %+v vs %+v", got, created)
	}
}

func TestServeCreateRejectsEmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("POST", "/events", strings.NewReader(`{"location":"Pune"}`))
	rec := httptest.NewRecorder()

	h.ServeCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestServeGetErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := httptest.NewRequest("GET", "/events/garbage", nil)
	req = testutil.WithChiURLParam(req, "eventID", "garbage")
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: got %d, want 400", rec.Code)
	}

	missing := primitive.NewObjectID().Hex()
	req = httptest.NewRequest("GET", "/events/"+missing, nil)
	req = testutil.WithChiURLParam(req, "eventID", missing)
	rec = httptest.NewRecorder()
	h.ServeGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rec.Code)
	}
}

func TestServeDocumentsWithoutEmbedderSkipsChunks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	h := newHandler(db)

	body := `{"title":"Agenda","chunks":["Doors open at six.","Keynote at seven."]}`
	req := httptest.NewRequest("POST", "/events/"+ev.ID.Hex()+"/documents", strings.NewReader(body))
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeDocuments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		DocumentKey string `json:"document_key"`
		Indexed     int    `json:"indexed"`
		Skipped     int    `json:"skipped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	// No API key is configured, so embedding fails per chunk and the
	// endpoint reports them skipped rather than erroring.
	if resp.Indexed != 0 || resp.Skipped != 2 || resp.DocumentKey == "" {
		t.Errorf("summary: %+v", resp)
	}
}

func TestServeDocumentsRequiresChunks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	h := newHandler(db)

	req := httptest.NewRequest("POST", "/events/"+ev.ID.Hex()+"/documents", strings.NewReader(`{"chunks":[]}`))
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeDocuments(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}
