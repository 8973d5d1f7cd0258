package extractor

import (
	"encoding/json"
	"strings"

	"lead-extract-eval/internal/types"
)

// ParseRecord pulls the first JSON object out of model output. Anything
// that does not decode to an object yields an empty record.
func ParseRecord(content string) types.RawRecord {
	raw := extractJSON(content)
	if raw == "" {
		return types.RawRecord{}
	}
	var rec types.RawRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec == nil {
		return types.RawRecord{}
	}
	return rec
}

// extractJSON finds the first balanced JSON object in a string and returns it.
// It strips common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```JSON", "```", "`json"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced found
	return ""
}
