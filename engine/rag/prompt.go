package rag

import (
	"fmt"
	"strings"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

// Mode selects the JSON contract the model is asked to produce.
type Mode int

const (
	// ModeVulnerability asks for a structured vulnerability report.
	ModeVulnerability Mode = iota
	// ModeEmail asks for an email draft.
	ModeEmail
	// ModeChat asks for a conversational reply.
	ModeChat
)

func (m Mode) String() string {
	switch m {
	case ModeVulnerability:
		return "vulnerability"
	case ModeEmail:
		return "email"
	case ModeChat:
		return "chat"
	default:
		return "unknown"
	}
}

const (
	vulnerabilityShape = `{"document_name": "document name here", "summary": "summary here", "sections": [{"title": "title here", "description": "description here", "vulnerabilities": [{"issue": "issue here", "risk_level": "risk level here", "details": "details here"}]}]}`
	emailShape         = `{"subject": "subject here", "body": "body of the email here"}`
	chatShape          = `{"response": "bot response here"}`

	chatPersona = "You are a highly knowledgeable and professional AI legal assistant designed to help small businesses, freelancers, and startups navigate legal complexities."

	strictJSON = "Respond **strictly** as a single JSON object without any extra text, in the format: "
)

// BuildPrompt renders the full prompt for a mode. Retrieved context
// chunks are joined with blank lines; conversation history, when
// present, is rendered one "role: content" line per turn.
func BuildPrompt(mode Mode, query string, history []domain.Turn, contextParts []string) string {
	context := strings.Join(contextParts, "\n\n")
	var b strings.Builder

	switch mode {
	case ModeVulnerability:
		fmt.Fprintf(&b, "Answer the following question based on the provided context:\n\nContext:\n%s\n\nQuestion: %s\n\n", context, query)
		b.WriteString(strictJSON + vulnerabilityShape)
	case ModeEmail:
		fmt.Fprintf(&b, "Generate an email for the user's request based on the provided context:\n\nContext:\n%s\n\nRequest: %s\n\n", context, query)
		b.WriteString(strictJSON + emailShape)
	case ModeChat:
		b.WriteString(chatPersona + " Here is the conversation history:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		fmt.Fprintf(&b, "\nBased on the context:\n%s\n\nAnswer the user's last message: %s\n\n", context, query)
		b.WriteString(strictJSON + chatShape)
	}
	return b.String()
}

// BuildAskPrompt renders the free-text question prompt. No JSON contract
// is imposed on the answer.
func BuildAskPrompt(query string, contextParts []string) string {
	context := strings.Join(contextParts, "\n\n")
	return fmt.Sprintf("Answer the question based on the provided context:\n\nContext:\n%s\n\nQuestion: %s", context, query)
}

// BuildReviewPrompt renders the standalone contract review prompt.
func BuildReviewPrompt(text string) string {
	return fmt.Sprintf("Review this contract for legal risks and flaws, and produce a list of potential issues:\n\n%s", text)
}
