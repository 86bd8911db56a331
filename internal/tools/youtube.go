package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeTool finds videos for a query. With an API key it searches the
// YouTube Data API; without one it falls back to curated recommendation
// text with search links, so the assistant still answers video requests
// in an unconfigured deployment.
type YouTubeTool struct {
	apiKey string
}

func NewYouTubeTool(apiKey string) *YouTubeTool {
	return &YouTubeTool{apiKey: apiKey}
}

func (t *YouTubeTool) Name() string { return "youtube_search" }

func (t *YouTubeTool) Description() string {
	return "Search for YouTube videos on any topic. Useful for finding educational, entertainment, or instructional videos."
}

func (t *YouTubeTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query for YouTube videos",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "Maximum number of video results to return",
			},
		},
		"required": []string{"query"},
	}
}

func (t *YouTubeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	maxResults := intArg(args, "max_results", 5)

	if t.apiKey == "" {
		return t.recommendations(query, maxResults), nil
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(t.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to init youtube service: %w", err)
	}
	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube search failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return fmt.Sprintf("No YouTube videos found for '%s'.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎥 **YouTube videos for '%s':**\n", query)
	for i, item := range resp.Items {
		fmt.Fprintf(&b, "\n**%d. %s**\n", i+1, item.Snippet.Title)
		fmt.Fprintf(&b, "📋 %s\n", item.Snippet.Description)
		fmt.Fprintf(&b, "🔗 https://www.youtube.com/watch?v=%s\n", item.Id.VideoId)
	}
	return b.String(), nil
}

// recommendation mirrors the keyless behaviour: curated suggestions for
// the family-trip domain, generic search links otherwise.
type recommendation struct {
	title       string
	description string
	searchTerm  string
}

func (t *YouTubeTool) recommendations(query string, maxResults int) string {
	lower := strings.ToLower(query)

	var recs []recommendation
	if containsAnyOf(lower, "singapore", "family", "kids", "children", "weekend", "trip") {
		recs = []recommendation{
			{
				title:       "Singapore Family Weekend Guide - Best Activities for Kids",
				description: "Weekend itinerary for families with young children including Jacob Ballas Children's Garden, East Coast Park, and Singapore Zoo",
				searchTerm:  "Singapore family weekend activities kids",
			},
			{
				title:       "Singapore Zoo Family Visit - Complete Guide with Kids",
				description: "Walkthrough of Singapore Zoo with children, including splash zones, animal shows, and family-friendly facilities",
				searchTerm:  "Singapore Zoo family visit guide children",
			},
			{
				title:       "Gardens by the Bay with Kids - Family-Friendly Singapore Attraction",
				description: "Exploring Gardens by the Bay's Flower Dome and outdoor gardens with children",
				searchTerm:  "Gardens by the Bay Singapore family kids guide",
			},
		}
	} else {
		recs = []recommendation{
			{
				title:       fmt.Sprintf("%s - Complete Guide and Tips", query),
				description: fmt.Sprintf("Comprehensive information and practical tips about %s", query),
				searchTerm:  fmt.Sprintf("%s complete guide tips", query),
			},
			{
				title:       fmt.Sprintf("Best %s Recommendations", query),
				description: fmt.Sprintf("Top recommendations and reviews for %s", query),
				searchTerm:  fmt.Sprintf("best %s recommendations review", query),
			},
		}
	}
	if len(recs) > maxResults {
		recs = recs[:maxResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎥 **YouTube Video Recommendations for '%s':**\n", query)
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n**%d. %s**\n", i+1, rec.title)
		fmt.Fprintf(&b, "📋 %s\n", rec.description)
		fmt.Fprintf(&b, "🔍 **Search YouTube:** https://www.youtube.com/results?search_query=%s\n",
			url.QueryEscape(rec.searchTerm))
	}
	return b.String()
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
