package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/minglehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

func testEvent() *models.Event {
	return &models.Event{
		ID:       primitive.NewObjectID(),
		Name:     "Founder Mixer",
		StartsAt: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		Location: "Pune",
	}
}

func TestAnswerGreetingMakesNoDownstreamCalls(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	r := NewResponder(nil, nil, emb, gen, zap.NewNop())

	resp := r.Answer(context.Background(), testEvent(), "Hello!")

	if resp.Intent != IntentGeneral {
		t.Errorf("intent: got %v, want GENERAL", resp.Intent)
	}
	if resp.Answer != greetingAnswer {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if emb.calls != 0 || gen.calls != 0 {
		t.Errorf("greeting must not call embedder (%d) or generator (%d)", emb.calls, gen.calls)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("greeting must carry no sources, got %d", len(resp.Sources))
	}
}

func TestAnswerLogisticsComesFromEventFields(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	r := NewResponder(nil, nil, emb, gen, zap.NewNop())

	resp := r.Answer(context.Background(), testEvent(), "when and where is it?")

	if resp.Intent != IntentEventInfo {
		t.Errorf("intent: got %v, want EVENT_INFO", resp.Intent)
	}
	want := "Founder Mixer takes place on March 14, 2026 at Pune."
	if resp.Answer != want {
		t.Errorf("answer: got %q, want %q", resp.Answer, want)
	}
	if emb.calls != 0 || gen.calls != 0 {
		t.Errorf("logistics answer must be direct, embedder=%d generator=%d", emb.calls, gen.calls)
	}
}

func TestDescribeLogisticsPartialFields(t *testing.T) {
	ev := &models.Event{Name: "Mixer", Location: "Hall B"}
	if got := describeLogistics(ev); got != "Mixer takes place at Hall B." {
		t.Errorf("location-only: got %q", got)
	}
	if got := describeLogistics(&models.Event{Name: "Mixer"}); got != notAvailableAnswer {
		t.Errorf("no fields: got %q", got)
	}
}

func TestAnswerCountingUsesLedgerDirectly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	memberships := membershipstore.New(db)
	for i, who := range []struct{ name, email, phone string }{
		{"Asha Rao", "asha@example.com", "2125550147"},
		{"Ben Ortiz", "ben@example.com", "2125550148"},
	} {
		ident := fix.CreateIdentity(ctx, who.name, who.email, who.phone)
		if _, err := memberships.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceManual); err != nil {
			t.Fatalf("add member %d: %v", i, err)
		}
	}

	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	r := NewResponder(memberships, embeddingstore.New(db), emb, gen, zap.NewNop())

	resp := r.Answer(ctx, &ev, "how many people are attending?")

	if resp.Answer != "There are 2 people attending this event." {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if emb.calls != 0 || gen.calls != 0 {
		t.Errorf("counting must bypass embedding and generation, embedder=%d generator=%d", emb.calls, gen.calls)
	}
}

func TestAnswerMemberSearchNoMatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")

	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	gen := &fakeGenerator{out: "should never be used"}
	r := NewResponder(membershipstore.New(db), embeddingstore.New(db), emb, gen, zap.NewNop())

	resp := r.Answer(ctx, &ev, "any investors here?")

	if resp.Answer != noMatchesAnswer {
		t.Errorf("answer: got %q, want the fixed no-matches string", resp.Answer)
	}
	if gen.calls != 0 {
		t.Errorf("zero hits must not reach the generator, got %d calls", gen.calls)
	}
}

func TestAnswerMemberSearchSynthesizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	embeddings := embeddingstore.New(db)

	longText := "Name: Asha Rao . Company: Lumen Labs . Description: builds optical sensing hardware for logistics"
	if err := embeddings.Upsert(ctx, models.EmbeddingRecord{
		EventID:    ev.ID,
		Category:   models.CategoryMemberProfile,
		SubjectKey: primitive.NewObjectID().Hex(),
		Text:       longText,
		Vector:     []float32{1, 0, 0},
	}); err != nil {
		t.Fatalf("upsert profile embedding: %v", err)
	}

	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	gen := &fakeGenerator{out: "Asha Rao of Lumen Labs builds optical sensors."}
	r := NewResponder(membershipstore.New(db), embeddings, emb, gen, zap.NewNop())

	resp := r.Answer(ctx, &ev, "any hardware founders here?")

	if resp.Answer != gen.out {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if gen.calls != 1 {
		t.Errorf("expected one synthesis call, got %d", gen.calls)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}
	src := resp.Sources[0]
	if src.Category != models.CategoryMemberProfile {
		t.Errorf("source category: got %q", src.Category)
	}
	if n := len([]rune(src.Snippet)); n > 50 {
		t.Errorf("snippet must be at most 50 runes, got %d", n)
	}
}

func TestAnswerGenerationFailureBecomesApology(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	embeddings := embeddingstore.New(db)

	if err := embeddings.Upsert(ctx, models.EmbeddingRecord{
		EventID:    ev.ID,
		Category:   models.CategoryMemberProfile,
		SubjectKey: primitive.NewObjectID().Hex(),
		Text:       "Name: Asha Rao",
		Vector:     []float32{1, 0, 0},
	}); err != nil {
		t.Fatalf("upsert profile embedding: %v", err)
	}

	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	r := NewResponder(membershipstore.New(db), embeddings, emb, gen, zap.NewNop())

	resp := r.Answer(ctx, &ev, "any founders here?")

	if resp.Answer != apologyAnswer {
		t.Errorf("answer: got %q, want the apology", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("apology must carry no sources, got %d", len(resp.Sources))
	}
}

func TestAnswerEmbeddingFailureBecomesApology(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("no api key")}
	gen := &fakeGenerator{}
	r := NewResponder(nil, nil, emb, gen, zap.NewNop())

	resp := r.Answer(context.Background(), testEvent(), "any founders here?")

	if resp.Answer != apologyAnswer {
		t.Errorf("answer: got %q, want the apology", resp.Answer)
	}
	if gen.calls != 0 {
		t.Errorf("failed embedding must not reach the generator, got %d calls", gen.calls)
	}
}
