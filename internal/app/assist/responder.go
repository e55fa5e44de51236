// internal/app/assist/responder.go
package assist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	"github.com/dalemusser/minglehub/internal/app/system/ai"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"go.uber.org/zap"
)

// Retrieval tuning. One threshold everywhere; the legacy behavior of
// widening to a lower threshold on empty results is intentionally gone.
const (
	similarityFloor   = 0.45
	memberSearchLimit = 10
	metadataLimit     = 3
	documentLimit     = 5

	maxSources   = 3
	snippetRunes = 50
)

// Canned responses. These paths make zero model calls.
const (
	greetingAnswer     = "Hello! Ask me anything about this event or the people attending it."
	noMatchesAnswer    = "I couldn't find any matching members for that. Try asking in a different way."
	notAvailableAnswer = "That information isn't available for this event yet."
	apologyAnswer      = "Sorry, I'm having trouble answering right now. Please try again in a moment."
)

var (
	countingRe  = regexp.MustCompile(`(?i)\b(how\s+many|count|total)\b`)
	logisticsRe = regexp.MustCompile(`(?i)\b(when|where|venue|time|date|location|address)\b`)
	agendaRe    = regexp.MustCompile(`(?i)\b(agendas?|topics?)\b`)
)

// Source points at one piece of retrieved material that grounded an answer.
type Source struct {
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

// Response is the assistant's reply to one question.
type Response struct {
	Answer  string   `json:"answer"`
	Intent  Intent   `json:"intent"`
	Sources []Source `json:"sources"`
}

// Responder is the retrieval router plus answer synthesizer. It is
// state-free per request; every method is safe for concurrent use.
type Responder struct {
	memberships *membershipstore.Store
	embeddings  *embeddingstore.Store
	embedder    ai.Embedder
	generator   ai.Generator
	log         *zap.Logger
}

func NewResponder(memberships *membershipstore.Store, embeddings *embeddingstore.Store, embedder ai.Embedder, generator ai.Generator, logger *zap.Logger) *Responder {
	return &Responder{
		memberships: memberships,
		embeddings:  embeddings,
		embedder:    embedder,
		generator:   generator,
		log:         logger,
	}
}

// Answer classifies the question and routes it. It never returns an error:
// every upstream failure inside the query path degrades to a fixed apology
// with no sources.
func (r *Responder) Answer(ctx context.Context, ev *models.Event, question string) Response {
	intent := ClassifyIntent(ctx, r.generator, question)

	switch intent {
	case IntentMemberSearch:
		return r.memberSearch(ctx, ev, question)
	case IntentEventInfo:
		return r.eventInfo(ctx, ev, question)
	default:
		return Response{Answer: greetingAnswer, Intent: IntentGeneral}
	}
}

func (r *Responder) memberSearch(ctx context.Context, ev *models.Event, question string) Response {
	resp := Response{Intent: IntentMemberSearch}

	// Counting questions come straight from the ledger: no embedding, no
	// generation.
	if countingRe.MatchString(question) {
		n, err := r.memberships.CountForEvent(ctx, ev.ID)
		if err != nil {
			r.log.Warn("member count failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
			resp.Answer = apologyAnswer
			return resp
		}
		if n == 1 {
			resp.Answer = "There is 1 person attending this event."
		} else {
			resp.Answer = fmt.Sprintf("There are %d people attending this event.", n)
		}
		return resp
	}

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil || len(vec) == 0 {
		r.log.Warn("question embedding failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}

	matches, err := r.embeddings.Query(ctx, vec, ev.ID, models.CategoryMemberProfile, memberSearchLimit, similarityFloor)
	if err != nil {
		r.log.Warn("member profile search failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}
	if len(matches) == 0 {
		resp.Answer = noMatchesAnswer
		return resp
	}

	return r.synthesize(ctx, IntentMemberSearch, question, matches)
}

func (r *Responder) eventInfo(ctx context.Context, ev *models.Event, question string) Response {
	resp := Response{Intent: IntentEventInfo}

	// Pure logistics questions are answered from the event's structured
	// fields; agenda/topic wording falls through to retrieval.
	if logisticsRe.MatchString(question) && !agendaRe.MatchString(question) {
		resp.Answer = describeLogistics(ev)
		return resp
	}

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil || len(vec) == 0 {
		r.log.Warn("question embedding failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}

	meta, err := r.embeddings.Query(ctx, vec, ev.ID, models.CategoryEventMetadata, metadataLimit, similarityFloor)
	if err != nil {
		r.log.Warn("event metadata search failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}
	docs, err := r.embeddings.Query(ctx, vec, ev.ID, models.CategoryEventDocument, documentLimit, similarityFloor)
	if err != nil {
		r.log.Warn("event document search failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}

	matches := append(meta, docs...)
	if len(matches) == 0 {
		resp.Answer = notAvailableAnswer
		return resp
	}

	return r.synthesize(ctx, IntentEventInfo, question, matches)
}

// describeLogistics composes the direct date/location answer.
func describeLogistics(ev *models.Event) string {
	hasDate := !ev.StartsAt.IsZero()
	hasLocation := ev.Location != ""

	switch {
	case hasDate && hasLocation:
		return fmt.Sprintf("%s takes place on %s at %s.", ev.Name, ev.StartsAt.Format("January 2, 2006"), ev.Location)
	case hasDate:
		return fmt.Sprintf("%s takes place on %s.", ev.Name, ev.StartsAt.Format("January 2, 2006"))
	case hasLocation:
		return fmt.Sprintf("%s takes place at %s.", ev.Name, ev.Location)
	default:
		return notAvailableAnswer
	}
}

// synthesize grounds a generated answer in the retrieved matches and trims
// the source list. A failed generation call becomes the apology answer with
// empty sources; it never propagates.
func (r *Responder) synthesize(ctx context.Context, intent Intent, question string, matches []embeddingstore.Match) Response {
	resp := Response{Intent: intent}

	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, m.Record.Text)
	}
	user := "Context:\n" + b.String() + "\nQuestion: " + question

	answer, err := r.generator.Complete(ctx, answerSystemPrompt, user)
	if err != nil || strings.TrimSpace(answer) == "" {
		r.log.Warn("answer synthesis failed", zap.Error(err))
		resp.Answer = apologyAnswer
		return resp
	}

	resp.Answer = strings.TrimSpace(answer)
	for _, m := range matches {
		if len(resp.Sources) == maxSources {
			break
		}
		resp.Sources = append(resp.Sources, Source{
			Category: m.Record.Category,
			Snippet:  truncateRunes(m.Record.Text, snippetRunes),
		})
	}
	return resp
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
