package assistant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/minglehub/internal/app/assist"
	assistantfeature "github.com/dalemusser/minglehub/internal/app/features/assistant"
	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	"github.com/dalemusser/minglehub/internal/app/system/ai"
	"github.com/dalemusser/minglehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// newHandler builds an assistant handler backed by the no-key AI client:
// rule-based intents and canned answers only, which is exactly what these
// tests exercise.
func newHandler(db *mongo.Database) *assistantfeature.Handler {
	logger := zap.NewNop()
	client := ai.NewClient(ai.Config{}, logger)
	responder := assist.NewResponder(membershipstore.New(db), embeddingstore.New(db), client, client, logger)
	return assistantfeature.NewHandler(eventstore.New(db), responder, logger)
}

func ask(t *testing.T, h *assistantfeature.Handler, eventID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/events/"+eventID+"/ask", strings.NewReader(body))
	req = testutil.WithChiURLParam(req, "eventID", eventID)
	rec := httptest.NewRecorder()
	h.ServeAsk(rec, req)
	return rec
}

func TestServeAskGreeting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	h := newHandler(db)

	rec := ask(t, h, ev.ID.Hex(), `{"question":"Hello!"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		ExchangeID string `json:"exchange_id"`
		Answer     string `json:"answer"`
		Intent     string `json:"intent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Intent != "GENERAL" {
		t.Errorf("intent: got %q, want GENERAL", resp.Intent)
	}
	if resp.Answer == "" || resp.ExchangeID == "" {
		t.Errorf("answer and exchange_id must be populated: %+v", resp)
	}
}

func TestServeAskCountingAnswer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	memberships := membershipstore.New(db)
	ident := fix.CreateIdentity(ctx, "Asha Rao", "asha@example.com", "2125550147")
	if _, err := memberships.Add(ctx, ev.ID, ev.OrganizerID, ident, "manual"); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	h := newHandler(db)

	rec := ask(t, h, ev.ID.Hex(), `{"question":"how many people are attending?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer string `json:"answer"`
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Intent != "MEMBER_SEARCH" {
		t.Errorf("intent: got %q", resp.Intent)
	}
	if resp.Answer != "There is 1 person attending this event." {
		t.Errorf("answer: got %q", resp.Answer)
	}
}

func TestServeAskValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	h := newHandler(db)

	if rec := ask(t, h, ev.ID.Hex(), `{"question":"   "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank question: got %d, want 400", rec.Code)
	}
	if rec := ask(t, h, "not-an-id", `{"question":"hi"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad event id: got %d, want 400", rec.Code)
	}
	if rec := ask(t, h, primitive.NewObjectID().Hex(), `{"question":"hi"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown event: got %d, want 404", rec.Code)
	}
}
