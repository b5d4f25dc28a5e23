package db

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeNameList reads a champion or role list stored as text. Ingestion
// writes JSON arrays; older rows may hold a plain comma-separated list.
func decodeNameList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("decode name list: %w", err)
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}

	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func encodeNameList(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode name list: %w", err)
	}
	return string(b), nil
}
