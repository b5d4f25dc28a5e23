package textgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Explanation string `json:"explanation"`
	}

	tests := []struct {
		name string
		text string
	}{
		{"plain", `{"explanation":"ok"}`},
		{"fenced with tag", "```json\n{\"explanation\":\"ok\"}\n```"},
		{"fenced without tag", "```\n{\"explanation\":\"ok\"}\n```"},
		{"surrounding prose", "Here you go:\n{\"explanation\":\"ok\"}\nThanks."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			require.NoError(t, DecodeJSON(tt.text, &got))
			assert.Equal(t, "ok", got.Explanation)
		})
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var got map[string]any
	assert.ErrorIs(t, DecodeJSON("no json here", &got), ErrMalformed)
	assert.ErrorIs(t, DecodeJSON(`{"explanation": }`, &got), ErrMalformed)
}
