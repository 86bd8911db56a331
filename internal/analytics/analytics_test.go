package analytics

import (
	"strings"
	"testing"
	"time"

	"agentic-chat/internal/memory"
)

func TestAnalyzeDaily(t *testing.T) {
	testDate := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	turns := []memory.Turn{
		{
			Timestamp:     testDate.Add(2 * time.Hour),
			UserMessage:   "weather in Singapore",
			AgentResponse: "sunny",
			ToolCalls:     []memory.ToolCall{{Tool: "get_weather"}},
			Metadata:      map[string]any{"intent": "weather_only"},
		},
		{
			Timestamp:     testDate.Add(4 * time.Hour),
			UserMessage:   "plan a trip",
			AgentResponse: "plan",
			ToolCalls: []memory.ToolCall{
				{Tool: "get_weather"},
				{Tool: "duckduckgo_search"},
			},
			Metadata: map[string]any{"intent": "travel_planning_with_weather"},
		},
		{
			Timestamp:     testDate.Add(6 * time.Hour),
			UserMessage:   "hello",
			AgentResponse: "I apologize",
			Metadata:      map[string]any{"intent": "general", "error": "connection reset"},
		},
		// Next day, must not be counted.
		{
			Timestamp:     testDate.AddDate(0, 0, 1),
			UserMessage:   "tomorrow",
			AgentResponse: "answer",
			ToolCalls:     []memory.ToolCall{{Tool: "get_weather"}},
		},
	}

	stats := AnalyzeDaily(turns, testDate)

	if stats.Date != "2025-08-20" {
		t.Errorf("Expected date '2025-08-20', got '%s'", stats.Date)
	}
	if stats.TotalMessages != 3 {
		t.Errorf("Expected 3 messages, got %d", stats.TotalMessages)
	}
	if stats.ToolCallsTotal != 3 {
		t.Errorf("Expected 3 tool calls, got %d", stats.ToolCallsTotal)
	}
	if stats.ToolCallsByTool["get_weather"] != 2 {
		t.Errorf("Expected 2 get_weather calls, got %d", stats.ToolCallsByTool["get_weather"])
	}
	if stats.ErrorTurns != 1 {
		t.Errorf("Expected 1 error turn, got %d", stats.ErrorTurns)
	}
	if stats.IntentsByType["weather_only"] != 1 {
		t.Errorf("Expected 1 weather_only intent, got %d", stats.IntentsByType["weather_only"])
	}
}

func TestGenerateReportSummary(t *testing.T) {
	testDate := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	turns := []memory.Turn{
		{
			Timestamp:     testDate,
			UserMessage:   "weather",
			AgentResponse: "sunny",
			ToolCalls:     []memory.ToolCall{{Tool: "get_weather"}},
			Metadata:      map[string]any{"intent": "weather_only"},
		},
	}

	summary := AnalyzeDaily(turns, testDate).GenerateReportSummary()

	if !strings.Contains(summary, "2025-08-20") {
		t.Errorf("summary missing date: %s", summary)
	}
	if !strings.Contains(summary, "get_weather: 1 calls") {
		t.Errorf("summary missing tool line: %s", summary)
	}
	if !strings.Contains(summary, "weather_only: 1") {
		t.Errorf("summary missing intent line: %s", summary)
	}
}

func TestAnalyzeDailyEmpty(t *testing.T) {
	stats := AnalyzeDaily(nil, time.Now())
	if stats.TotalMessages != 0 || stats.ToolCallsTotal != 0 {
		t.Errorf("empty input should produce zero stats: %+v", stats)
	}
	if _, err := stats.ToJSON(); err != nil {
		t.Errorf("ToJSON failed: %v", err)
	}
}
