package domain

import (
	"errors"
	"testing"
)

func validDoc() Document {
	return Document{
		ID:       "doc-1",
		Name:     "nda.txt",
		Text:     "1. Scope This agreement applies broadly.",
		Category: "IP Law",
	}
}

func TestValidateDocument_Valid(t *testing.T) {
	if err := ValidateDocument(validDoc()); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidateDocument_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"empty text", func(d *Document) { d.Text = "" }},
		{"whitespace text", func(d *Document) { d.Text = "   \n\t" }},
		{"empty id", func(d *Document) { d.ID = "" }},
		{"empty name", func(d *Document) { d.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(&doc)
			err := ValidateDocument(doc)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrUnsupportedInput) {
				t.Errorf("expected ErrUnsupportedInput, got %v", err)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("what are the risks?"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateQuery("  "); !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("expected ErrUnsupportedInput, got %v", err)
	}
}

func TestParseError(t *testing.T) {
	inner := errors.New("unexpected character")
	err := NewParseError("not json", inner)
	if err.Raw != "not json" {
		t.Errorf("raw text not preserved: %q", err.Raw)
	}
	if !errors.Is(err, inner) {
		t.Error("expected ParseError to unwrap to inner error")
	}
	var pe *ParseError
	if !errors.As(error(err), &pe) {
		t.Error("expected errors.As to find ParseError")
	}
}
