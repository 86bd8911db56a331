package memory

import (
	"strings"
	"testing"
)

func TestSearchCapAndPositiveScores(t *testing.T) {
	s := testStore(t)
	s.Append(NewTurn("weather in Singapore today", "sunny and humid", nil, nil))
	s.Append(NewTurn("weather forecast for Singapore weekend", "rain expected", nil, nil))
	s.Append(NewTurn("best laksa recipe", "try Katong", nil, nil))

	got := s.Search("Singapore weather", 1)
	if len(got) != 1 {
		t.Fatalf("want at most 1 result, got %d", len(got))
	}

	// A query sharing no tokens with any turn returns nothing (score 0 excluded).
	if got := s.Search("quantum chromodynamics", 5); len(got) != 0 {
		t.Fatalf("zero-score turns must be excluded, got %+v", got)
	}
}

func TestSearchEmptyHistory(t *testing.T) {
	s := testStore(t)
	if got := s.Search("anything", 3); len(got) != 0 {
		t.Fatalf("empty history should return nothing, got %+v", got)
	}
}

func TestBackReferenceRanksSubstantiveTurnFirst(t *testing.T) {
	s := testStore(t)

	// Unrelated, tool-free, short-response turn.
	s.Append(NewTurn("tell me a joke", "why did the chicken cross the road", nil, nil))
	// Substantive turn: tool call, long response, shares a token with the query.
	long := strings.Repeat("Singapore weekend plan detail. ", 10)
	if len(long) <= 200 {
		t.Fatalf("fixture response must exceed 200 chars")
	}
	s.Append(NewTurn(
		"plan my Singapore weekend",
		long,
		[]ToolCall{{Tool: "duckduckgo_search", Input: map[string]any{"query": "Singapore"}, Result: "results"}},
		nil,
	))

	got := s.Search("earlier you mentioned my Singapore weekend", 2)
	if len(got) == 0 {
		t.Fatalf("expected at least one result")
	}
	if got[0].UserMessage != "plan my Singapore weekend" {
		t.Fatalf("substantive turn should rank first, got %q", got[0].UserMessage)
	}
}

func TestDomainToolBonus(t *testing.T) {
	s := testStore(t)
	s.Append(NewTurn(
		"find videos about cooking",
		"here are some cooking videos",
		[]ToolCall{{Tool: "youtube_search", Input: map[string]any{"query": "cooking"}, Result: "links"}},
		nil,
	))
	s.Append(NewTurn("cooking tips", "use less salt when cooking", nil, nil))

	got := s.Search("that video about cooking", 2)
	if len(got) < 2 {
		t.Fatalf("both turns share tokens, want 2 results, got %d", len(got))
	}
	if got[0].ToolCalls == nil || got[0].ToolCalls[0].Tool != "youtube_search" {
		t.Fatalf("turn with matching tool class should rank first, got %q", got[0].UserMessage)
	}
}

func TestTiesKeepChronologicalOrder(t *testing.T) {
	s := testStore(t)
	s.Append(NewTurn("durian season", "durian is ripe", nil, nil))
	s.Append(NewTurn("durian season", "durian is ripe", nil, nil))

	got := s.Search("durian season", 2)
	if len(got) != 2 {
		t.Fatalf("want 2 results, got %d", len(got))
	}
	if !got[0].Timestamp.Before(got[1].Timestamp) && !got[0].Timestamp.Equal(got[1].Timestamp) {
		t.Fatalf("stable sort should keep insertion order on ties")
	}
}
