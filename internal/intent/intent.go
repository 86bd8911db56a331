// Package intent classifies a user message into a small taxonomy and
// extracts structured slots. Classification is a fixed-order decision
// table: rule order and override precedence are part of the contract,
// so the same text always yields the same result.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	General       Intent = "general"
	VideoSearch   Intent = "video_search"
	Search        Intent = "search"
	WeatherOnly   Intent = "weather_only"
	TravelWeather Intent = "travel_planning_with_weather"
)

// Result is produced fresh per message and consumed within the same turn.
type Result struct {
	PrimaryIntent         Intent
	RequiresMultipleTools bool
	ToolsNeeded           []string
	Location              string
	IsTravelPlanning      bool
	IsWeatherDependent    bool
	IsFamilyActivity      bool
	// AgeGroups may contain duplicates; callers must tolerate them.
	AgeGroups []int
}

// Rules holds the keyword groups and patterns the classifier matches
// against. The defaults are hand-tuned and geography-biased on purpose;
// they are carried as data so deployments can swap them out.
type Rules struct {
	// KnownPlaces maps a lowercase match to its canonical spelling.
	KnownPlaces map[string]string
	// LocationPattern is the fallback "in/at/to <Name>" extractor.
	LocationPattern *regexp.Regexp

	TravelWords  []string
	WeatherWords []string
	FamilyWords  []string
	VideoWords   []string
	SearchWords  []string

	AgePatterns []*regexp.Regexp

	WeatherToolName string
	SearchToolName  string
	VideoToolName   string
}

// DefaultRules returns the original rule set.
func DefaultRules() Rules {
	return Rules{
		KnownPlaces: map[string]string{
			"singapore":          "Singapore",
			"sentosa":            "Sentosa",
			"gardens by the bay": "Gardens by the Bay",
			"east coast park":    "East Coast Park",
			"singapore zoo":      "Singapore Zoo",
			"jurong":             "Jurong",
			"changi":             "Changi",
			"malaysia":           "Malaysia",
			"johor bahru":        "Johor Bahru",
		},
		LocationPattern: regexp.MustCompile(`(?:\bin|\bat|\bto)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`),

		TravelWords:  []string{"plan", "trip", "travel", "itinerary", "weekend", "getaway", "holiday", "visit"},
		WeatherWords: []string{"weather", "rain", "raining", "sunny", "forecast", "temperature", "humid"},
		FamilyWords:  []string{"family", "kid", "kids", "child", "children", "toddler", "aged", "son", "daughter"},
		VideoWords:   []string{"video", "videos", "youtube", "watch", "clip"},
		SearchWords:  []string{"search", "look up", "google", "news", "information", "what is", "who is", "tell me about"},

		AgePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)aged?\s+(\d{1,2})(?:\s*(?:and|,|&)\s*(\d{1,2}))?`),
			regexp.MustCompile(`(?i)(\d{1,2})\s*(?:years?|yrs?)[\s-]old`),
		},

		WeatherToolName: "get_weather",
		SearchToolName:  "duckduckgo_search",
		VideoToolName:   "youtube_search",
	}
}

type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify runs the decision table over the message. Later rules may
// override primary_intent set by earlier ones; the composite travel rule
// wins over everything.
func (c *Classifier) Classify(text string) Result {
	r := Result{PrimaryIntent: General}
	lower := strings.ToLower(text)

	// 1. Location slot.
	r.Location = c.detectLocation(text, lower)

	// 2. Independent keyword flags.
	r.IsTravelPlanning = containsAnyWord(lower, c.rules.TravelWords)
	r.IsWeatherDependent = containsAnyWord(lower, c.rules.WeatherWords)
	r.IsFamilyActivity = containsAnyWord(lower, c.rules.FamilyWords)

	// 3. Age mentions, duplicates preserved.
	r.AgeGroups = c.extractAges(text)

	// 4. Video keywords claim the intent first.
	if containsAnyWord(lower, c.rules.VideoWords) {
		r.PrimaryIntent = VideoSearch
		r.ToolsNeeded = appendUnique(r.ToolsNeeded, c.rules.VideoToolName)
	}

	// 5. Search keywords only upgrade a general intent.
	if r.PrimaryIntent == General && containsAnyWord(lower, c.rules.SearchWords) {
		r.PrimaryIntent = Search
		r.ToolsNeeded = appendUnique(r.ToolsNeeded, c.rules.SearchToolName)
	}

	// 6. Composite travel rule overrides rules 4-5.
	if r.IsTravelPlanning && r.Location != "" && r.IsFamilyActivity && r.IsWeatherDependent {
		r.PrimaryIntent = TravelWeather
		r.RequiresMultipleTools = true
		r.ToolsNeeded = appendUnique(r.ToolsNeeded, c.rules.WeatherToolName)
		r.ToolsNeeded = appendUnique(r.ToolsNeeded, c.rules.SearchToolName)
		return r
	}

	// 7. Weather dependence without travel planning.
	if r.IsWeatherDependent && !r.IsTravelPlanning {
		r.PrimaryIntent = WeatherOnly
		r.ToolsNeeded = appendUnique(r.ToolsNeeded, c.rules.WeatherToolName)
	}

	return r
}

func (c *Classifier) detectLocation(text, lower string) string {
	// Longest known place wins so "Singapore Zoo" beats "Singapore".
	best := ""
	canonical := ""
	for place, canon := range c.rules.KnownPlaces {
		if strings.Contains(lower, place) && len(place) > len(best) {
			best = place
			canonical = canon
		}
	}
	if canonical != "" {
		return canonical
	}
	if m := c.rules.LocationPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (c *Classifier) extractAges(text string) []int {
	var ages []int
	for _, p := range c.rules.AgePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			for _, g := range m[1:] {
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil {
					ages = append(ages, n)
				}
			}
		}
	}
	return ages
}

func containsAnyWord(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
