package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"agentic-chat/internal/intent"
	"agentic-chat/internal/llm"
	"agentic-chat/internal/memory"
	"agentic-chat/internal/tools"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.reply}, nil
}

type stubTool struct {
	name   string
	result string
	err    error
	inputs []map[string]any
}

func (s *stubTool) Name() string           { return s.name }
func (s *stubTool) Description() string    { return "stub" }
func (s *stubTool) Schema() map[string]any { return map[string]any{"type": "object"} }

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	s.inputs = append(s.inputs, args)
	return s.result, s.err
}

func testAgent(t *testing.T, client llm.Client, ts ...tools.Tool) (*Agent, *memory.Store) {
	t.Helper()
	store := memory.Open(filepath.Join(t.TempDir(), "mem.json"), memory.DefaultScoringConfig())
	a := New(client, tools.NewRegistry(ts...), store,
		intent.NewClassifier(intent.DefaultRules()), "You are a helpful assistant.", "Singapore")
	return a, store
}

func TestWeatherOnlyReturnsToolTextDirectly(t *testing.T) {
	oracle := &fakeLLM{reply: "should not be used"}
	weather := &stubTool{name: "get_weather", result: "**Weather for Singapore, SG**\n31.2°C"}
	a, store := testAgent(t, oracle, weather)

	reply := a.ProcessMessage(context.Background(), "What's the weather in Singapore?")

	if reply.Status != "success" {
		t.Fatalf("status = %q", reply.Status)
	}
	if reply.Response != weather.result {
		t.Fatalf("tool text should pass through unmodified, got %q", reply.Response)
	}
	if oracle.calls != 0 {
		t.Fatalf("weather replies must not go through the model, got %d calls", oracle.calls)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Tool != "get_weather" {
		t.Fatalf("unexpected tool calls: %+v", reply.ToolCalls)
	}
	if loc := reply.ToolCalls[0].Input["location"]; loc != "Singapore" {
		t.Fatalf("location = %v", loc)
	}
	if len(store.All()) != 1 {
		t.Fatalf("turn not committed")
	}
}

func TestWeatherWithoutLocationAsksForClarification(t *testing.T) {
	weather := &stubTool{name: "get_weather", result: "irrelevant"}
	a, _ := testAgent(t, &fakeLLM{reply: "x"}, weather)

	reply := a.ProcessMessage(context.Background(), "Is it raining?")

	if len(weather.inputs) != 0 {
		t.Fatalf("no tool call should be made without a location")
	}
	if len(reply.ToolCalls) != 0 {
		t.Fatalf("unexpected tool calls: %+v", reply.ToolCalls)
	}
	if !strings.Contains(reply.Response, "location") {
		t.Fatalf("expected clarification, got %q", reply.Response)
	}
}

func TestTravelCompositeRunsWeatherThenSearch(t *testing.T) {
	oracle := &fakeLLM{reply: "Here is your weekend plan."}
	weather := &stubTool{name: "get_weather", result: "sunny, 30°C"}
	search := &stubTool{name: "duckduckgo_search", result: "1. Singapore Zoo"}
	a, _ := testAgent(t, oracle, weather, search)

	reply := a.ProcessMessage(context.Background(),
		"Plan a weekend trip in Singapore for my family with kids aged 3 and 6, depending on the weather")

	if reply.Status != "success" {
		t.Fatalf("status = %q", reply.Status)
	}
	if len(reply.ToolCalls) != 2 {
		t.Fatalf("expected exactly two tool calls, got %+v", reply.ToolCalls)
	}
	if reply.ToolCalls[0].Tool != "get_weather" || reply.ToolCalls[1].Tool != "duckduckgo_search" {
		t.Fatalf("wrong order: %s then %s", reply.ToolCalls[0].Tool, reply.ToolCalls[1].Tool)
	}
	query, _ := reply.ToolCalls[1].Input["query"].(string)
	if !strings.Contains(query, "Singapore") || !strings.Contains(query, "family activities") {
		t.Fatalf("search query not seeded with location: %q", query)
	}
	if !strings.Contains(query, "3") || !strings.Contains(query, "6") {
		t.Fatalf("search query not seeded with ages: %q", query)
	}
	if oracle.calls != 1 {
		t.Fatalf("synthesis should call the model once, got %d", oracle.calls)
	}
	if reply.Response != "Here is your weekend plan." {
		t.Fatalf("got %q", reply.Response)
	}
}

func TestTravelCompositeFallsBackWhenSynthesisFails(t *testing.T) {
	oracle := &fakeLLM{err: fmt.Errorf("model unavailable")}
	weather := &stubTool{name: "get_weather", result: "sunny, 30°C"}
	search := &stubTool{name: "duckduckgo_search", result: "1. Singapore Zoo"}
	a, _ := testAgent(t, oracle, weather, search)

	reply := a.ProcessMessage(context.Background(),
		"Plan a weekend trip in Singapore for my family with kids aged 3 and 6, depending on the weather")

	if reply.Status != "success" {
		t.Fatalf("gathered information must survive a synthesis failure, status = %q", reply.Status)
	}
	if !strings.Contains(reply.Response, "sunny, 30°C") || !strings.Contains(reply.Response, "Singapore Zoo") {
		t.Fatalf("fallback should combine raw tool output, got %q", reply.Response)
	}
	if len(reply.ToolCalls) != 2 {
		t.Fatalf("tool calls lost: %+v", reply.ToolCalls)
	}
}

func TestVideoSearchStripsVerbsAndDefaultsQuery(t *testing.T) {
	oracle := &fakeLLM{reply: "Here are some videos."}
	video := &stubTool{name: "youtube_search", result: "🎥 results"}
	a, _ := testAgent(t, oracle, video)

	a.ProcessMessage(context.Background(), "Can you find videos please")

	if len(video.inputs) != 1 {
		t.Fatalf("expected one video search, got %d", len(video.inputs))
	}
	if q := video.inputs[0]["query"]; q != "Singapore travel guide" {
		t.Fatalf("empty stripped query should use the default, got %v", q)
	}
}

func TestToolFailureDoesNotAbortTurn(t *testing.T) {
	oracle := &fakeLLM{reply: "wrapped"}
	video := &stubTool{name: "youtube_search", err: fmt.Errorf("quota exceeded")}
	a, store := testAgent(t, oracle, video)

	reply := a.ProcessMessage(context.Background(), "find videos about cooking")

	if reply.Status != "success" {
		t.Fatalf("a tool failure must not abort the turn, status = %q", reply.Status)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("failed call should still be recorded: %+v", reply.ToolCalls)
	}
	if !strings.Contains(reply.ToolCalls[0].Result, "Error executing youtube_search") {
		t.Fatalf("recorded result should carry the error text: %q", reply.ToolCalls[0].Result)
	}
	if len(store.All()) != 1 {
		t.Fatalf("turn not committed")
	}
}

func TestGeneralErrorStillCommitsTurn(t *testing.T) {
	oracle := &fakeLLM{err: fmt.Errorf("connection reset")}
	a, store := testAgent(t, oracle)

	reply := a.ProcessMessage(context.Background(), "hello there")

	if reply.Status != "error" {
		t.Fatalf("status = %q", reply.Status)
	}
	if !strings.Contains(reply.Response, "I apologize") {
		t.Fatalf("user should always receive text, got %q", reply.Response)
	}
	turns := store.All()
	if len(turns) != 1 {
		t.Fatalf("error turn not committed")
	}
	if turns[0].Metadata["error"] == nil {
		t.Fatalf("error missing from metadata: %+v", turns[0].Metadata)
	}
}

func TestGeneralAppendsToolOutputOnUncertainty(t *testing.T) {
	oracle := &fakeLLM{reply: "I don't have current information about that."}
	search := &stubTool{name: "duckduckgo_search", result: "1. Latest news item"}
	a, _ := testAgent(t, oracle, search)

	reply := a.ProcessMessage(context.Background(), "latest developments on the new MRT line")

	if !strings.HasPrefix(reply.Response, "I don't have current information") {
		t.Fatalf("original answer must be kept on top, got %q", reply.Response)
	}
	if !strings.Contains(reply.Response, "1. Latest news item") {
		t.Fatalf("tool output should be appended underneath, got %q", reply.Response)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Tool != "duckduckgo_search" {
		t.Fatalf("unexpected tool calls: %+v", reply.ToolCalls)
	}
}

func TestSearchHandlerUsesTemplatedReply(t *testing.T) {
	search := &stubTool{name: "duckduckgo_search", result: "1. **Result**"}
	a, _ := testAgent(t, &fakeLLM{reply: "x"}, search)

	reply := a.ProcessMessage(context.Background(), "search for hawker centres")

	if !strings.Contains(reply.Response, `Here's what I found for "hawker centres"`) {
		t.Fatalf("got %q", reply.Response)
	}
	if !strings.Contains(reply.Response, "1. **Result**") {
		t.Fatalf("raw results missing: %q", reply.Response)
	}
}

func TestRecordedResultsAreTruncated(t *testing.T) {
	long := strings.Repeat("x", 2000)
	search := &stubTool{name: "duckduckgo_search", result: long}
	a, _ := testAgent(t, &fakeLLM{reply: "x"}, search)

	reply := a.ProcessMessage(context.Background(), "search for something huge")

	if got := len(reply.ToolCalls[0].Result); got != 503 {
		t.Fatalf("recorded result should be capped at 500 chars plus ellipsis, got %d", got)
	}
}
