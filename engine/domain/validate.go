package domain

import (
	"fmt"
	"strings"
)

// ValidateDocument checks a Document before ingestion.
func ValidateDocument(doc Document) error {
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("validate: %w: document text is empty", ErrUnsupportedInput)
	}
	if doc.ID == "" {
		return fmt.Errorf("validate: %w: document id is empty", ErrUnsupportedInput)
	}
	if doc.Name == "" {
		return fmt.Errorf("validate: %w: document name is empty", ErrUnsupportedInput)
	}
	return nil
}

// ValidateQuery checks a user query before retrieval.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("validate: %w: query is empty", ErrUnsupportedInput)
	}
	return nil
}
