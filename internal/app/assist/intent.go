// internal/app/assist/intent.go
package assist

import (
	"context"
	"regexp"
	"strings"

	"github.com/dalemusser/minglehub/internal/app/system/ai"
)

// Intent is the fixed question category the retrieval router switches on.
type Intent string

const (
	IntentMemberSearch Intent = "MEMBER_SEARCH"
	IntentEventInfo    Intent = "EVENT_INFO"
	IntentGeneral      Intent = "GENERAL"
)

// Deterministic rule pass. Precedence is deliberate and load-bearing:
// greetings first, then member/person keywords, then logistics keywords.
// MEMBER_SEARCH is checked before EVENT_INFO so phrasing like "who is
// speaking" lands on the people path rather than the logistics path.
var (
	// A greeting only counts when the message is nothing but a greeting;
	// "hello, who is attending" must still reach the keyword rules.
	greetingRe = regexp.MustCompile(`(?i)^\s*(hi|hiya|hello|hey|yo|greetings|good\s+(morning|afternoon|evening)|thanks|thank\s+you)[\s!,.?]*$`)

	memberRe = regexp.MustCompile(`(?i)\b(who|whom|anyone|investors?|founders?|ceos?|ctos?|engineers?|designers?|attend\w*|members?|people|person|participants?|connect\w*|network\w*|intro\w*|list|profiles?|meet)\b`)

	eventRe = regexp.MustCompile(`(?i)\b(when|where|venue|time|date|location|address|agendas?|schedules?|topics?|speakers?|parking|directions?|about)\b`)
)

// ruleIntent runs the deterministic keyword pass. ok is false when no rule
// fired and the generative fallback should decide.
func ruleIntent(question string) (Intent, bool) {
	switch {
	case greetingRe.MatchString(question):
		return IntentGeneral, true
	case memberRe.MatchString(question):
		return IntentMemberSearch, true
	case eventRe.MatchString(question):
		return IntentEventInfo, true
	}
	return IntentGeneral, false
}

// ClassifyIntent maps a free-text question to an intent: rules first, and
// only when no rule matches a single generative label call. An unrecognized
// label or a failed call defaults to GENERAL.
func ClassifyIntent(ctx context.Context, gen ai.Generator, question string) Intent {
	if intent, ok := ruleIntent(question); ok {
		return intent
	}

	out, err := gen.Complete(ctx, classifySystemPrompt, question)
	if err != nil {
		return IntentGeneral
	}
	return parseIntentLabel(out)
}

func parseIntentLabel(s string) Intent {
	s = strings.ToUpper(s)
	switch {
	case strings.Contains(s, string(IntentMemberSearch)):
		return IntentMemberSearch
	case strings.Contains(s, string(IntentEventInfo)):
		return IntentEventInfo
	}
	return IntentGeneral
}
