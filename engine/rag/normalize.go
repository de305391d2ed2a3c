package rag

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

// Normalize strips markdown code fences from raw model output and
// validates that what remains is one JSON value. Output that cannot be
// normalized yields a ParseError carrying the raw text.
func Normalize(raw string) (json.RawMessage, error) {
	// models wrap JSON in ```json ... ``` fences despite instructions
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, domain.NewParseError(raw, errors.New("empty model output"))
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, domain.NewParseError(raw, errors.New("model output is not valid JSON"))
	}
	return json.RawMessage(cleaned), nil
}
