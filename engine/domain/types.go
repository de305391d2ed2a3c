// Package domain defines the core types, error taxonomy, and validation for
// the LexGuard pipeline. It acts as the validation gate at pipeline entry
// points.
package domain

import "time"

// Document is a raw text document submitted for ingestion. It is ephemeral:
// once chunked and stored, only the catalog entry and the vector records
// survive.
type Document struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Text     string            `json:"text"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata,omitempty"`
	QueuedAt time.Time         `json:"queued_at,omitzero"`
}

// Conversation turn roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Turn is one message in a session's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
