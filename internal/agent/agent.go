// Package agent runs the per-message pipeline: gather context from
// memory, classify the message, execute the matching handler, commit
// the turn. Each message runs strictly sequentially; tool calls inside
// a handler never run concurrently because later steps feed on earlier
// results.
package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"agentic-chat/internal/intent"
	"agentic-chat/internal/llm"
	"agentic-chat/internal/memory"
	"agentic-chat/internal/tools"
)

const (
	maxRecordedResult  = 500
	defaultVideoQuery  = "Singapore travel guide"
	recentHistoryTurns = 5
	contextMatches     = 2
)

// uncertaintyPhrases mark an oracle reply that admits it lacks current
// information; such replies get tool output appended underneath.
var uncertaintyPhrases = []string{
	"i don't have current information",
	"i don't have access to real-time",
	"i don't have real-time",
	"i cannot browse",
	"my knowledge cutoff",
	"i'm not able to access",
}

var weatherLocationPattern = regexp.MustCompile(`(?i)weather\s+(?:in|at|for)\s+([a-zA-Z ]+)`)

// Reply is what every transport hands back to the user.
type Reply struct {
	Status    string            `json:"status"`
	Response  string            `json:"response"`
	ToolCalls []memory.ToolCall `json:"tool_calls"`
	Error     string            `json:"error,omitempty"`
}

type Agent struct {
	llm             llm.Client
	tools           *tools.Registry
	memory          *memory.Store
	classifier      *intent.Classifier
	systemPrompt    string
	defaultLocation string
}

func New(client llm.Client, registry *tools.Registry, store *memory.Store,
	classifier *intent.Classifier, systemPrompt, defaultLocation string) *Agent {
	return &Agent{
		llm:             client,
		tools:           registry,
		memory:          store,
		classifier:      classifier,
		systemPrompt:    systemPrompt,
		defaultLocation: defaultLocation,
	}
}

// ProcessMessage is the orchestrator boundary: any handler failure is
// converted into an apology reply, and the turn is committed either way
// so the history never loses a message.
func (a *Agent) ProcessMessage(ctx context.Context, userMessage string) Reply {
	enhanced := a.gatherContext(userMessage)

	res := a.classifier.Classify(userMessage)
	log.Printf("🎯 intent: %s (tools: %v)", res.PrimaryIntent, res.ToolsNeeded)

	response, calls, err := a.dispatch(ctx, userMessage, enhanced, res)
	if err != nil {
		log.Printf("❌ failed to process message: %v", err)
		response = fmt.Sprintf("I apologize, but I encountered an error while processing your request: %v", err)
		a.memory.Append(memory.NewTurn(userMessage, response, calls, map[string]any{
			"intent": string(res.PrimaryIntent),
			"error":  err.Error(),
		}))
		return Reply{Status: "error", Response: response, ToolCalls: calls, Error: err.Error()}
	}

	a.memory.Append(memory.NewTurn(userMessage, response, calls, map[string]any{
		"intent": string(res.PrimaryIntent),
	}))
	return Reply{Status: "success", Response: response, ToolCalls: calls}
}

// gatherContext appends the most relevant prior turns to the message so
// the oracle sees follow-up references.
func (a *Agent) gatherContext(userMessage string) string {
	relevant := a.memory.Search(userMessage, contextMatches)
	if len(relevant) == 0 {
		return userMessage
	}
	var lines []string
	for _, turn := range relevant {
		lines = append(lines, fmt.Sprintf("Previous relevant context: %s -> %s",
			turn.UserMessage, truncate(turn.AgentResponse, 100)))
	}
	return fmt.Sprintf("%s\n\nRelevant previous context:\n%s", userMessage, strings.Join(lines, "\n"))
}

func (a *Agent) dispatch(ctx context.Context, userMessage, enhanced string, res intent.Result) (string, []memory.ToolCall, error) {
	switch {
	case res.RequiresMultipleTools && res.PrimaryIntent == intent.TravelWeather:
		return a.handleTravelPlanning(ctx, userMessage, res)
	case res.PrimaryIntent == intent.VideoSearch:
		return a.handleVideoSearch(ctx, userMessage)
	case res.PrimaryIntent == intent.WeatherOnly:
		return a.handleWeatherOnly(ctx, userMessage, res)
	case res.PrimaryIntent == intent.Search:
		return a.handleSearch(ctx, userMessage)
	default:
		return a.handleGeneral(ctx, userMessage, enhanced, res)
	}
}

// handleTravelPlanning runs weather then activity search, then asks the
// oracle to synthesize a plan from both. If the oracle fails, the raw
// tool outputs are combined in a template instead of being dropped.
func (a *Agent) handleTravelPlanning(ctx context.Context, userMessage string, res intent.Result) (string, []memory.ToolCall, error) {
	location := res.Location
	if location == "" {
		location = a.defaultLocation
	}
	log.Printf("🌤️ travel planning for %s (ages %v)", location, res.AgeGroups)

	var calls []memory.ToolCall

	weatherArgs := map[string]any{"location": location}
	weatherText := a.tools.Invoke(ctx, "get_weather", weatherArgs)
	calls = append(calls, memory.ToolCall{
		Tool:    "get_weather",
		Input:   weatherArgs,
		Result:  truncate(weatherText, maxRecordedResult),
		Purpose: "Check weather conditions for the trip",
	})

	searchQuery := location + " family activities"
	if len(res.AgeGroups) > 0 {
		searchQuery += " for kids aged " + joinAges(res.AgeGroups)
	}
	searchArgs := map[string]any{"query": searchQuery, "max_results": 5}
	searchText := a.tools.Invoke(ctx, "duckduckgo_search", searchArgs)
	calls = append(calls, memory.ToolCall{
		Tool:    "duckduckgo_search",
		Input:   searchArgs,
		Result:  truncate(searchText, maxRecordedResult),
		Purpose: "Find family-friendly activities",
	})

	prompt := fmt.Sprintf(`User asked: %q

Weather information:
%s

Family activity search results:
%s

Please synthesize a structured travel plan that directly addresses the request,
weaves in the weather conditions, and recommends activities suitable for the
family. Format it clearly with appropriate emojis.`, userMessage, weatherText, searchText)

	resp, err := a.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: "You are a helpful travel planning assistant. Build concrete, weather-aware itineraries from the information provided."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		log.Printf("⚠️ synthesis failed, returning combined tool output: %v", err)
		fallback := fmt.Sprintf("Here's what I found for your trip to %s:\n\n%s\n\n**Family activities:**\n%s",
			location, weatherText, searchText)
		return fallback, calls, nil
	}
	return resp.Content, calls, nil
}

// handleVideoSearch strips command verbs to derive a search phrase,
// falls back to a canned phrase when nothing is left, then asks the
// oracle to wrap the results.
func (a *Agent) handleVideoSearch(ctx context.Context, userMessage string) (string, []memory.ToolCall, error) {
	query := stripPhrases(userMessage,
		"can you", "show me", "find me", "find", "search for", "youtube", "videos", "video", "watch", "please")
	if query == "" {
		query = defaultVideoQuery
	}
	log.Printf("🎥 video request, searching for %q", query)

	args := map[string]any{"query": query, "max_results": 5}
	result := a.tools.Invoke(ctx, "youtube_search", args)
	calls := []memory.ToolCall{{
		Tool:   "youtube_search",
		Input:  args,
		Result: truncate(result, maxRecordedResult),
	}}

	prompt := fmt.Sprintf(`User asked: %s

Video search results:
%s

Please provide a helpful response that includes the video recommendations with
a short explanation of why each one fits the request.`, userMessage, result)

	resp, err := a.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: "You are a helpful assistant. Present video recommendations naturally."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		log.Printf("⚠️ video wrap failed, returning raw results: %v", err)
		return result, calls, nil
	}
	return resp.Content, calls, nil
}

// handleWeatherOnly returns the tool text directly; the oracle is not
// involved. With no resolvable location it asks for clarification and
// makes no tool call at all.
func (a *Agent) handleWeatherOnly(ctx context.Context, userMessage string, res intent.Result) (string, []memory.ToolCall, error) {
	location := res.Location
	if location == "" {
		if m := weatherLocationPattern.FindStringSubmatch(userMessage); m != nil {
			location = strings.TrimSpace(m[1])
		}
	}
	if location == "" {
		return "Which location would you like the weather for?", nil, nil
	}

	args := map[string]any{"location": location}
	result := a.tools.Invoke(ctx, "get_weather", args)
	calls := []memory.ToolCall{{
		Tool:   "get_weather",
		Input:  args,
		Result: truncate(result, maxRecordedResult),
	}}

	if looksLikeToolError(result) {
		return fmt.Sprintf("I'm sorry, I couldn't retrieve the weather for %s right now. Please try again later.", location), calls, nil
	}
	return result, calls, nil
}

// handleSearch strips boilerplate and returns the raw results in a
// template, with no synthesis layer.
func (a *Agent) handleSearch(ctx context.Context, userMessage string) (string, []memory.ToolCall, error) {
	terms := stripPhrases(userMessage,
		"search for", "search", "look up", "google", "tell me about", "what is", "who is", "find", "please")
	if terms == "" {
		terms = userMessage
	}

	args := map[string]any{"query": terms, "max_results": 5}
	result := a.tools.Invoke(ctx, "duckduckgo_search", args)
	calls := []memory.ToolCall{{
		Tool:   "duckduckgo_search",
		Input:  args,
		Result: truncate(result, maxRecordedResult),
	}}

	return fmt.Sprintf("Here's what I found for %q:\n\n%s", terms, result), calls, nil
}

// handleGeneral asks the oracle once without tools. If the reply admits
// ignorance, or the message carries domain keywords the classifier
// noted tools for, the relevant tool output is appended underneath the
// original answer rather than replacing it.
func (a *Agent) handleGeneral(ctx context.Context, userMessage, enhanced string, res intent.Result) (string, []memory.ToolCall, error) {
	messages := append(a.historyMessages(), llm.Message{Role: "user", Content: enhanced})
	resp, err := a.llm.Generate(ctx, messages)
	if err != nil {
		return "", nil, fmt.Errorf("llm request failed: %w", err)
	}
	answer := resp.Content

	needsTools := len(res.ToolsNeeded) > 0
	if !needsTools {
		lower := strings.ToLower(answer)
		for _, phrase := range uncertaintyPhrases {
			if strings.Contains(lower, phrase) {
				needsTools = true
				break
			}
		}
	}
	if !needsTools {
		return answer, nil, nil
	}

	toolNames := res.ToolsNeeded
	if len(toolNames) == 0 {
		toolNames = []string{"duckduckgo_search"}
	}

	var calls []memory.ToolCall
	var extras []string
	for _, name := range toolNames {
		args := a.argsForTool(name, userMessage, res)
		result := a.tools.Invoke(ctx, name, args)
		calls = append(calls, memory.ToolCall{
			Tool:    name,
			Input:   args,
			Result:  truncate(result, maxRecordedResult),
			Purpose: "Supplement answer with current information",
		})
		extras = append(extras, result)
	}

	return answer + "\n\n**Additional current information:**\n" + strings.Join(extras, "\n\n"), calls, nil
}

func (a *Agent) argsForTool(name, userMessage string, res intent.Result) map[string]any {
	switch name {
	case "get_weather":
		location := res.Location
		if location == "" {
			location = a.defaultLocation
		}
		return map[string]any{"location": location}
	default:
		return map[string]any{"query": userMessage, "max_results": 5}
	}
}

// historyMessages renders recent turns as alternating role messages,
// prefixed by the system prompt when one is configured.
func (a *Agent) historyMessages() []llm.Message {
	var messages []llm.Message
	if a.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: a.systemPrompt})
	}
	for _, turn := range a.memory.Recent(recentHistoryTurns) {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.UserMessage},
			llm.Message{Role: "assistant", Content: turn.AgentResponse},
		)
	}
	return messages
}

func looksLikeToolError(result string) bool {
	return strings.HasPrefix(result, "Error") ||
		strings.Contains(result, "not found") ||
		strings.Contains(result, "not configured")
}

func stripPhrases(text string, phrases ...string) string {
	out := strings.ToLower(text)
	for _, phrase := range phrases {
		out = strings.ReplaceAll(out, phrase, "")
	}
	out = strings.Trim(out, " .,!?")
	return strings.Join(strings.Fields(out), " ")
}

func joinAges(ages []int) string {
	parts := make([]string, len(ages))
	for i, age := range ages {
		parts[i] = fmt.Sprintf("%d", age)
	}
	if len(parts) > 1 {
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
	return parts[0]
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
