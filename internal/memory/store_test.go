package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "memory.json"), DefaultScoringConfig())
}

func TestRecentClampsToHistory(t *testing.T) {
	s := testStore(t)

	for i, msg := range []string{"one", "two", "three"} {
		_ = i
		s.Append(NewTurn(msg, "reply to "+msg, nil, nil))
	}

	if got := s.Recent(2); len(got) != 2 || got[0].UserMessage != "two" || got[1].UserMessage != "three" {
		t.Fatalf("unexpected recent(2): %+v", got)
	}
	if got := s.Recent(10); len(got) != 3 {
		t.Fatalf("recent(10) should clamp to 3, got %d", len(got))
	}
	if got := s.Recent(0); got != nil {
		t.Fatalf("recent(0) should be empty, got %+v", got)
	}
}

func TestReloadReproducesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s := Open(path, DefaultScoringConfig())

	s.Append(NewTurn("hello", "hi there", []ToolCall{{Tool: "get_weather", Input: map[string]any{"location": "Singapore"}, Result: "sunny"}}, map[string]any{"intent": "weather_only"}))
	s.Append(NewTurn("thanks", "welcome", nil, nil))
	s.SetScratch("favourite_city", "Singapore")

	reloaded := Open(path, DefaultScoringConfig())
	turns := reloaded.All()
	if len(turns) != 2 {
		t.Fatalf("want 2 turns after reload, got %d", len(turns))
	}
	if turns[0].UserMessage != "hello" || turns[1].UserMessage != "thanks" {
		t.Fatalf("order not preserved: %+v", turns)
	}
	if len(turns[0].ToolCalls) != 1 || turns[0].ToolCalls[0].Tool != "get_weather" {
		t.Fatalf("tool calls not preserved: %+v", turns[0].ToolCalls)
	}
	if got := reloaded.GetScratch("favourite_city", ""); got != "Singapore" {
		t.Fatalf("scratchpad not preserved: %v", got)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s := Open(path, DefaultScoringConfig())
	if got := s.All(); len(got) != 0 {
		t.Fatalf("corrupt file should start empty, got %d turns", len(got))
	}
	// The store must still accept appends afterwards.
	s.Append(NewTurn("hi", "hello", nil, nil))
	if got := s.All(); len(got) != 1 {
		t.Fatalf("append after corrupt load failed: %d turns", len(got))
	}
}

func TestClearKeepsScratchpad(t *testing.T) {
	s := testStore(t)
	s.Append(NewTurn("hi", "hello", nil, nil))
	s.SetScratch("key", "value")

	s.Clear()

	if got := s.All(); len(got) != 0 {
		t.Fatalf("clear did not empty history: %d", len(got))
	}
	if got := s.GetScratch("key", nil); got != "value" {
		t.Fatalf("clear should not touch scratchpad, got %v", got)
	}
}

func TestGetScratchDefault(t *testing.T) {
	s := testStore(t)
	if got := s.GetScratch("missing", "fallback"); got != "fallback" {
		t.Fatalf("unexpected default: %v", got)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s := Open(path, DefaultScoringConfig())

	st := s.Stats()
	if st.TotalConversations != 0 {
		t.Fatalf("want 0 conversations, got %d", st.TotalConversations)
	}
	if st.MemoryFileExists {
		t.Fatalf("no snapshot was written yet, memory_file_exists should be false")
	}

	s.Append(NewTurn("hi", "hello", nil, nil))
	if st := s.Stats(); !st.MemoryFileExists {
		t.Fatalf("memory_file_exists should be true after append")
	}
}

func TestStatsTruncatesRecentTopics(t *testing.T) {
	s := testStore(t)
	long := strings.Repeat("x", 80)
	s.Append(NewTurn(long, "ok", nil, nil))

	st := s.Stats()
	if st.TotalConversations != 1 || !st.MemoryFileExists {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if len(st.RecentTopics) != 1 || st.RecentTopics[0] != strings.Repeat("x", 50)+"..." {
		t.Fatalf("unexpected recent topics: %+v", st.RecentTopics)
	}
	if st.OldestConversation == "" || st.NewestConversation == "" {
		t.Fatalf("timestamps missing: %+v", st)
	}
}

func TestSnapshotFileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s := Open(path, DefaultScoringConfig())
	s.Append(NewTurn("hi", "hello", nil, nil))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	for _, key := range []string{"conversation_history", "session_memory", "last_updated"} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("snapshot missing %q: %s", key, data)
		}
	}
}
