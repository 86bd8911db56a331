package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearchTool queries the DuckDuckGo instant-answer API and formats the
// abstract plus related topics as a numbered list.
type SearchTool struct {
	baseURL    string
	httpClient *http.Client
}

func NewSearchTool() *SearchTool {
	return &SearchTool{
		baseURL:    "https://api.duckduckgo.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *SearchTool) Name() string { return "duckduckgo_search" }

func (t *SearchTool) Description() string {
	return "Search the web for current information using DuckDuckGo. Useful for finding recent news, facts, and general information."
}

func (t *SearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query for DuckDuckGo",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results to return",
			},
		},
		"required": []string{"query"},
	}
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	maxResults := intArg(args, "max_results", 5)

	reqURL := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		t.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("search API error %d", resp.StatusCode)
	}
	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var results []string
	if parsed.AbstractText != "" {
		title := parsed.Heading
		if title == "" {
			title = query
		}
		results = append(results, fmt.Sprintf("1. **%s**\n   URL: %s\n   Summary: %s",
			title, parsed.AbstractURL, parsed.AbstractText))
	}
	for _, topic := range flattenTopics(parsed.RelatedTopics) {
		if len(results) >= maxResults {
			break
		}
		results = append(results, fmt.Sprintf("%d. **%s**\n   URL: %s",
			len(results)+1, topic.Text, topic.FirstURL))
	}

	if len(results) == 0 {
		return "No search results found.", nil
	}
	return strings.Join(results, "\n"), nil
}

func flattenTopics(topics []ddgTopic) []ddgTopic {
	var out []ddgTopic
	for _, topic := range topics {
		if topic.Text != "" {
			out = append(out, topic)
		}
		out = append(out, flattenTopics(topic.Topics)...)
	}
	return out
}
