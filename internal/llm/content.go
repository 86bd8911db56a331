package llm

import "strings"

// ExtractText flattens an oracle response payload into plain text.
// Providers return content either as a single string or as a list of typed
// blocks like {"type": "text", "text": "..."}; both shapes are handled so
// callers never see anything but a string.
func ExtractText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, item := range v {
			switch block := item.(type) {
			case string:
				b.WriteString(block)
			case map[string]any:
				if t, ok := block["text"].(string); ok {
					b.WriteString(t)
				}
			}
		}
		return b.String()
	case map[string]any:
		if t, ok := v["text"].(string); ok {
			return t
		}
		return ""
	default:
		return ""
	}
}
