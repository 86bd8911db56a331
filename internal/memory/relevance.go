package memory

import (
	"sort"
	"strings"
)

// ScoringConfig carries the hand-tuned relevance weights and word lists.
// The values are configuration, not constants: callers may substitute their
// own, but the defaults match the original tuning and are deliberately not
// "corrected" for geography.
type ScoringConfig struct {
	// Phrases that mark a query as referencing earlier conversation.
	BackReferencePhrases []string
	// Words ignored during token overlap.
	StopWords []string
	// Decorative glyphs that mark a richly formatted response.
	Markers []string
	// DomainTools maps a query keyword to the tool-name fragment it implies,
	// e.g. "video" -> "youtube".
	DomainTools map[string]string

	RecencyWeight       float64 // scaled by position for back-references
	ToolUseBonus        float64 // back-referenced turn recorded a tool call
	LongResponseBonus   float64 // back-referenced turn has a long response
	MessageTokenWeight  float64 // per shared token with the user message
	ResponseTokenWeight float64 // per shared token with the response
	DomainToolBonus     float64 // per tool call matching the query's domain
	MarkerBonus         float64 // response contains a marker glyph
	LongResponseChars   int
}

// DefaultScoringConfig returns the original weights (5/3/2/4/1) and lists.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BackReferencePhrases: []string{
			"earlier", "before", "previous", "you mentioned", "you said",
			"that video", "that place", "last time", "we talked", "again",
		},
		StopWords: []string{
			"the", "a", "an", "is", "are", "was", "were", "i", "you", "me",
			"my", "your", "to", "of", "in", "on", "at", "for", "and", "or",
			"it", "this", "that", "what", "how", "can", "do", "does", "with",
			"about", "please",
		},
		Markers: []string{"🎯", "🎥", "🌤️", "🌡️", "📍", "✅", "💡", "**"},
		DomainTools: map[string]string{
			"video":   "youtube",
			"youtube": "youtube",
			"watch":   "youtube",
			"weather": "weather",
			"rain":    "weather",
			"search":  "search",
			"find":    "search",
		},
		RecencyWeight:       5,
		ToolUseBonus:        3,
		LongResponseBonus:   2,
		MessageTokenWeight:  2,
		ResponseTokenWeight: 1,
		DomainToolBonus:     4,
		MarkerBonus:         1,
		LongResponseChars:   200,
	}
}

// rankTurns scores every turn against the query and returns the top
// maxResults with positive scores, ties broken by chronological order.
func rankTurns(cfg ScoringConfig, turns []Turn, query string, maxResults int) []Turn {
	if maxResults <= 0 || len(turns) == 0 {
		return nil
	}

	queryLower := strings.ToLower(query)
	queryTokens := tokenize(queryLower, cfg.StopWords)
	backRef := containsAny(queryLower, cfg.BackReferencePhrases)

	type scored struct {
		turn  Turn
		score float64
		pos   int
	}
	var ranked []scored
	for i, t := range turns {
		score := scoreTurn(cfg, t, i, len(turns), queryLower, queryTokens, backRef)
		if score > 0 {
			ranked = append(ranked, scored{turn: t, score: score, pos: i})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	out := make([]Turn, len(ranked))
	for i, r := range ranked {
		out[i] = r.turn
	}
	return out
}

func scoreTurn(cfg ScoringConfig, t Turn, pos, total int, queryLower string, queryTokens map[string]struct{}, backRef bool) float64 {
	var score float64

	// 1. Explicit back-reference: favour recent, tool-using, substantive turns.
	if backRef {
		score += cfg.RecencyWeight * float64(pos+1) / float64(total)
		if len(t.ToolCalls) > 0 {
			score += cfg.ToolUseBonus
		}
		if len(t.AgentResponse) > cfg.LongResponseChars {
			score += cfg.LongResponseBonus
		}
	}

	// 2/3. Token overlap with the user message and the response.
	msgTokens := tokenize(strings.ToLower(t.UserMessage), cfg.StopWords)
	score += cfg.MessageTokenWeight * float64(overlap(queryTokens, msgTokens))
	respTokens := tokenize(strings.ToLower(t.AgentResponse), cfg.StopWords)
	score += cfg.ResponseTokenWeight * float64(overlap(queryTokens, respTokens))

	// 4. Tool class matching the query's domain words.
	for keyword, toolFragment := range cfg.DomainTools {
		if !strings.Contains(queryLower, keyword) {
			continue
		}
		for _, call := range t.ToolCalls {
			if strings.Contains(call.Tool, toolFragment) {
				score += cfg.DomainToolBonus
			}
		}
	}

	// 5. Marker glyphs as a proxy for substantive formatting.
	if containsAny(t.AgentResponse, cfg.Markers) {
		score += cfg.MarkerBonus
	}

	return score
}

func tokenize(lower string, stopWords []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(lower) {
		tok := strings.Trim(f, ".,!?;:\"'()[]")
		if tok == "" || isStopWord(tok, stopWords) {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func isStopWord(tok string, stopWords []string) bool {
	for _, s := range stopWords {
		if tok == s {
			return true
		}
	}
	return false
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
