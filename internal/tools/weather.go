package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// WeatherTool looks up current conditions via OpenWeatherMap: a geocoding
// call resolves the location to coordinates, then the current-weather
// endpoint is queried.
type WeatherTool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewWeatherTool(apiKey string) *WeatherTool {
	return &WeatherTool{
		apiKey:     apiKey,
		baseURL:    "http://api.openweathermap.org",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *WeatherTool) Name() string { return "get_weather" }

func (t *WeatherTool) Description() string {
	return "Get current weather information for a specified location. Useful for weather forecasts and current conditions."
}

func (t *WeatherTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City name or location to get weather for",
			},
			"units": map[string]any{
				"type":        "string",
				"description": "Temperature units: metric (Celsius), imperial (Fahrenheit), or kelvin",
			},
		},
		"required": []string{"location"},
	}
}

type geoResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type weatherResult struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (t *WeatherTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if t.apiKey == "" {
		return "Weather API key not configured. Please set OPENWEATHER_API_KEY environment variable.", nil
	}
	location := stringArg(args, "location", "")
	if location == "" {
		return "", fmt.Errorf("location is required")
	}
	units := stringArg(args, "units", "metric")

	var geo []geoResult
	geoURL := fmt.Sprintf("%s/geo/1.0/direct?q=%s&limit=1&appid=%s",
		t.baseURL, url.QueryEscape(location), t.apiKey)
	if err := t.getJSON(ctx, geoURL, &geo); err != nil {
		return "", fmt.Errorf("geocoding failed: %w", err)
	}
	if len(geo) == 0 {
		return fmt.Sprintf("Location '%s' not found.", location), nil
	}

	var w weatherResult
	weatherURL := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&units=%s&appid=%s",
		t.baseURL, geo[0].Lat, geo[0].Lon, url.QueryEscape(units), t.apiKey)
	if err := t.getJSON(ctx, weatherURL, &w); err != nil {
		return "", fmt.Errorf("weather lookup failed: %w", err)
	}
	if len(w.Weather) == 0 {
		return "", fmt.Errorf("weather data missing for %s", location)
	}

	unitSymbol := "°C"
	windUnit := "m/s"
	switch units {
	case "imperial":
		unitSymbol = "°F"
		windUnit = "mph"
	case "kelvin":
		unitSymbol = "K"
	}

	return fmt.Sprintf(`**Weather for %s, %s**

🌡️ **Temperature:** %.1f%s (feels like %.1f%s)
🌤️ **Condition:** %s - %s
💧 **Humidity:** %d%%
🌬️ **Wind:** %.1f %s
🔽 **Pressure:** %d hPa`,
		w.Name, w.Sys.Country,
		w.Main.Temp, unitSymbol, w.Main.FeelsLike, unitSymbol,
		w.Weather[0].Main, w.Weather[0].Description,
		w.Main.Humidity,
		w.Wind.Speed, windUnit,
		w.Main.Pressure), nil
}

func (t *WeatherTool) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
