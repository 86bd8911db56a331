package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const nominatimUserAgent = "agentic-chat"

// geocoder wraps the Nominatim search endpoint shared by the location and
// distance tools.
type geocoder struct {
	baseURL    string
	httpClient *http.Client
}

func newGeocoder() *geocoder {
	return &geocoder{
		baseURL:    "https://nominatim.openstreetmap.org",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type geoPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

func (g *geocoder) search(ctx context.Context, query string, limit int) ([]geoPlace, error) {
	reqURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=%d",
		g.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocoding API error %d", resp.StatusCode)
	}
	var places []geoPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return places, nil
}

func (p geoPlace) coords() (lat, lon float64, err error) {
	if _, err = fmt.Sscanf(p.Lat, "%f", &lat); err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", p.Lat)
	}
	if _, err = fmt.Sscanf(p.Lon, "%f", &lon); err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", p.Lon)
	}
	return lat, lon, nil
}

// LocationTool searches for location details via Nominatim.
type LocationTool struct {
	geo *geocoder
}

func NewLocationTool() *LocationTool {
	return &LocationTool{geo: newGeocoder()}
}

func (t *LocationTool) Name() string { return "location_search" }

func (t *LocationTool) Description() string {
	return "Search for location information, get coordinates, and find nearby places. Useful for geography and navigation queries."
}

func (t *LocationTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Location query to search for (address, city, landmark, etc.)",
			},
		},
		"required": []string{"query"},
	}
}

func (t *LocationTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	places, err := t.geo.search(ctx, query, 3)
	if err != nil {
		return "", err
	}
	if len(places) == 0 {
		return fmt.Sprintf("No location found for '%s'", query), nil
	}

	var parts []string
	for i, p := range places {
		lat, lon, err := p.coords()
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%d. %s**\n📍 **Coordinates:** %.6f, %.6f\n🏢 **Type:** %s",
			i+1, p.DisplayName, lat, lon, p.Type))
	}
	return strings.Join(parts, "\n\n"), nil
}

// DistanceTool geocodes two locations and reports the great-circle
// distance between them.
type DistanceTool struct {
	geo *geocoder
}

func NewDistanceTool() *DistanceTool {
	return &DistanceTool{geo: newGeocoder()}
}

func (t *DistanceTool) Name() string { return "calculate_distance" }

func (t *DistanceTool) Description() string {
	return "Calculate distance between two locations. Useful for travel planning and geography questions."
}

func (t *DistanceTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location1": map[string]any{
				"type":        "string",
				"description": "First location",
			},
			"location2": map[string]any{
				"type":        "string",
				"description": "Second location",
			},
		},
		"required": []string{"location1", "location2"},
	}
}

func (t *DistanceTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	loc1 := stringArg(args, "location1", "")
	loc2 := stringArg(args, "location2", "")
	if loc1 == "" || loc2 == "" {
		return "", fmt.Errorf("location1 and location2 are required")
	}

	p1, err := t.geo.search(ctx, loc1, 1)
	if err != nil {
		return "", err
	}
	if len(p1) == 0 {
		return fmt.Sprintf("Could not find location: %s", loc1), nil
	}
	p2, err := t.geo.search(ctx, loc2, 1)
	if err != nil {
		return "", err
	}
	if len(p2) == 0 {
		return fmt.Sprintf("Could not find location: %s", loc2), nil
	}

	lat1, lon1, err := p1[0].coords()
	if err != nil {
		return "", err
	}
	lat2, lon2, err := p2[0].coords()
	if err != nil {
		return "", err
	}

	km := haversineKm(lat1, lon1, lat2, lon2)
	return fmt.Sprintf(`**Distance Calculation**
📍 **From:** %s
📍 **To:** %s
📏 **Distance:** %.2f km (%.2f miles)`,
		p1[0].DisplayName, p2[0].DisplayName, km, km*0.621371), nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
