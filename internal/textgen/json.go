package textgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a completion into dest after stripping markdown code
// fences and any prose around the outermost JSON object.
func DecodeJSON(text string, dest any) error {
	cleaned := stripFences(text)
	if err := json.Unmarshal([]byte(cleaned), dest); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
