package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxSuggestions = 3

var suggestionSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"suggestions": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["suggestions"]
}`)

// ParseSuggestions validates the model's JSON reply and returns the trimmed,
// non-empty questions. An empty reply yields no suggestions and no error.
func ParseSuggestions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	result, err := gojsonschema.Validate(suggestionSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("chat: parse suggestions: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("chat: suggestions failed validation: %v", errs)
	}

	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("chat: decode suggestions: %w", err)
	}

	out := make([]string, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}
