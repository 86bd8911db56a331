package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store holds the conversation history and the session scratchpad, and
// snapshots both to a single JSON file on every mutation. Load failures
// (missing or corrupt file) leave the store empty; write failures are
// logged and swallowed so a persistence fault never blocks a conversation.
// Single-writer assumption: concurrent processes sharing one file race
// last-write-wins.
type Store struct {
	mu      sync.Mutex
	path    string
	scoring ScoringConfig
	turns   []Turn
	scratch map[string]any
}

type snapshot struct {
	ConversationHistory []Turn         `json:"conversation_history"`
	SessionMemory       map[string]any `json:"session_memory"`
	LastUpdated         time.Time      `json:"last_updated"`
}

// Open loads the store from path, starting empty when the file is missing
// or unreadable.
func Open(path string, scoring ScoringConfig) *Store {
	s := &Store{
		path:    path,
		scoring: scoring,
		scratch: make(map[string]any),
	}
	s.load()
	return s
}

// Append adds the turn to the end of the history and persists. Append never
// fails the caller: disk errors are logged, not returned.
func (s *Store) Append(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
	s.persist()
}

// Recent returns the last n turns in chronological order, clamped to the
// available history.
func (s *Store) Recent(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// All returns a copy of the full history.
func (s *Store) All() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Search returns up to maxResults turns ranked by relevance to the query.
// Only turns with a positive score are returned.
func (s *Store) Search(query string, maxResults int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rankTurns(s.scoring, s.turns, query, maxResults)
}

// SetScratch stores a session value and persists.
func (s *Store) SetScratch(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scratch[key] = value
	s.persist()
}

// GetScratch reads a session value, returning def when the key is absent.
func (s *Store) GetScratch(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.scratch[key]; ok {
		return v
	}
	return def
}

// Clear empties the conversation history, leaves the scratchpad untouched,
// and persists immediately.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.persist()
}

// Stats describes the store for diagnostics.
type Stats struct {
	TotalConversations int      `json:"total_conversations"`
	MemoryFileExists   bool     `json:"memory_file_exists"`
	FileSizeKB         float64  `json:"file_size_kb"`
	OldestConversation string   `json:"oldest_conversation,omitempty"`
	NewestConversation string   `json:"newest_conversation,omitempty"`
	SessionDataKeys    []string `json:"session_data_keys"`
	RecentTopics       []string `json:"recent_topics"`
}

// Stats reports counts, timestamps, scratchpad keys and up to five recent
// user messages truncated to 50 characters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalConversations: len(s.turns),
		SessionDataKeys:    make([]string, 0, len(s.scratch)),
		RecentTopics:       []string{},
	}
	for k := range s.scratch {
		st.SessionDataKeys = append(st.SessionDataKeys, k)
	}
	if fi, err := os.Stat(s.path); err == nil {
		st.MemoryFileExists = true
		st.FileSizeKB = float64(fi.Size()) / 1024
	}
	if len(s.turns) == 0 {
		return st
	}
	st.OldestConversation = s.turns[0].Timestamp.Format(time.RFC3339)
	st.NewestConversation = s.turns[len(s.turns)-1].Timestamp.Format(time.RFC3339)

	start := len(s.turns) - 5
	if start < 0 {
		start = 0
	}
	for _, t := range s.turns[start:] {
		st.RecentTopics = append(st.RecentTopics, truncateTopic(t.UserMessage, 50))
	}
	return st
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

func truncateTopic(msg string, max int) string {
	r := []rune(msg)
	if len(r) <= max {
		return msg
	}
	return string(r[:max]) + "..."
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ failed to read memory file %s: %v", s.path, err)
		}
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("⚠️ memory file %s is corrupt, starting empty: %v", s.path, err)
		return
	}
	s.turns = snap.ConversationHistory
	if snap.SessionMemory != nil {
		s.scratch = snap.SessionMemory
	}
}

// persist rewrites the whole snapshot via a temp file and rename so a crash
// mid-write cannot leave a truncated document. Caller holds the lock.
func (s *Store) persist() {
	if err := s.writeSnapshot(); err != nil {
		log.Printf("⚠️ failed to persist memory to %s: %v", s.path, err)
	}
}

func (s *Store) writeSnapshot() error {
	snap := snapshot{
		ConversationHistory: s.turns,
		SessionMemory:       s.scratch,
		LastUpdated:         time.Now().UTC(),
	}
	if snap.ConversationHistory == nil {
		snap.ConversationHistory = []Turn{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure memory dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
