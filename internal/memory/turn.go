package memory

import "time"

// ToolCall records one tool invocation made while producing a turn.
// Result is truncated by the orchestrator before recording.
type ToolCall struct {
	Tool    string         `json:"tool"`
	Input   map[string]any `json:"input"`
	Result  string         `json:"result"`
	Purpose string         `json:"purpose,omitempty"`
}

// Turn is one completed user/assistant exchange. Turns are immutable once
// appended; ToolCalls keeps execution order.
type Turn struct {
	Timestamp     time.Time      `json:"timestamp"`
	UserMessage   string         `json:"user_message"`
	AgentResponse string         `json:"agent_response"`
	ToolCalls     []ToolCall     `json:"tool_calls"`
	Metadata      map[string]any `json:"metadata"`
}

// NewTurn stamps a turn with the current time.
func NewTurn(userMessage, agentResponse string, toolCalls []ToolCall, metadata map[string]any) Turn {
	if toolCalls == nil {
		toolCalls = []ToolCall{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Turn{
		Timestamp:     time.Now().UTC(),
		UserMessage:   userMessage,
		AgentResponse: agentResponse,
		ToolCalls:     toolCalls,
		Metadata:      metadata,
	}
}
