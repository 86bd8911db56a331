// Package analytics aggregates conversation turns into daily usage
// statistics for the scheduled report.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"agentic-chat/internal/memory"
)

// DailyStats holds the aggregated numbers for one calendar day.
type DailyStats struct {
	Date            string         `json:"date"`
	TotalMessages   int            `json:"total_messages"`
	ToolCallsTotal  int            `json:"tool_calls_total"`
	ToolCallsByTool map[string]int `json:"tool_calls_by_tool"`
	ErrorTurns      int            `json:"error_turns"`
	IntentsByType   map[string]int `json:"intents_by_type"`
}

// AnalyzeDaily aggregates the turns that fall on the target date.
func AnalyzeDaily(turns []memory.Turn, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		ToolCallsByTool: make(map[string]int),
		IntentsByType:   make(map[string]int),
	}

	for _, turn := range turns {
		if turn.Timestamp.Before(startOfDay) || !turn.Timestamp.Before(endOfDay) {
			continue
		}

		stats.TotalMessages++

		for _, call := range turn.ToolCalls {
			stats.ToolCallsTotal++
			stats.ToolCallsByTool[call.Tool]++
		}

		if turn.Metadata != nil {
			if _, failed := turn.Metadata["error"]; failed {
				stats.ErrorTurns++
			}
			if intentName, ok := turn.Metadata["intent"].(string); ok {
				stats.IntentsByType[intentName]++
			}
		}
	}

	return stats
}

// GenerateReportSummary renders the stats as the plain-text daily report.
func (ds *DailyStats) GenerateReportSummary() string {
	summary := fmt.Sprintf(`📊 Assistant usage for %s:

Overall activity:
- Messages processed: %d
- Tool calls: %d
- Error turns: %d

`, ds.Date, ds.TotalMessages, ds.ToolCallsTotal, ds.ErrorTurns)

	if len(ds.ToolCallsByTool) > 0 {
		summary += "Tool usage:\n"
		for _, name := range sortedKeys(ds.ToolCallsByTool) {
			summary += fmt.Sprintf("- %s: %d calls\n", name, ds.ToolCallsByTool[name])
		}
		summary += "\n"
	}

	if len(ds.IntentsByType) > 0 {
		summary += "Intents:\n"
		for _, name := range sortedKeys(ds.IntentsByType) {
			summary += fmt.Sprintf("- %s: %d\n", name, ds.IntentsByType[name])
		}
	}

	return summary
}

// ToJSON serializes the stats for detailed inspection.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
