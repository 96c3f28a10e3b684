package util

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the first well-formed JSON object out of model output and
// unmarshals it into v. Models wrap JSON in prose or markdown fences often
// enough that a plain json.Unmarshal on the raw text is unreliable.
func ExtractJSON(text string, v any) error {
	candidate := stripFences(text)

	start := strings.Index(candidate, "{")
	if start < 0 {
		return fmt.Errorf("no JSON object found in text")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(candidate); i++ {
		c := candidate[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return json.Unmarshal([]byte(candidate[start:i+1]), v)
			}
		}
	}

	return fmt.Errorf("unbalanced JSON object in text")
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
