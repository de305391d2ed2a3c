package rag

import (
	"strings"
	"testing"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

func TestBuildPrompt_Vulnerability(t *testing.T) {
	p := BuildPrompt(ModeVulnerability, "What are the risks?", nil, []string{"clause one", "clause two"})

	if !strings.Contains(p, "clause one\n\nclause two") {
		t.Error("context chunks should be joined with blank lines")
	}
	if !strings.Contains(p, "Question: What are the risks?") {
		t.Error("query missing from prompt")
	}
	if !strings.Contains(p, `"document_name"`) || !strings.Contains(p, `"risk_level"`) {
		t.Error("vulnerability JSON shape missing")
	}
	if !strings.Contains(p, "**strictly**") {
		t.Error("strict JSON instruction missing")
	}
}

func TestBuildPrompt_Email(t *testing.T) {
	p := BuildPrompt(ModeEmail, "Decline the renewal politely", nil, []string{"renewal clause"})

	if !strings.Contains(p, "Request: Decline the renewal politely") {
		t.Error("request missing from prompt")
	}
	if !strings.Contains(p, `"subject"`) || !strings.Contains(p, `"body"`) {
		t.Error("email JSON shape missing")
	}
}

func TestBuildPrompt_ChatRendersHistory(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "Is my NDA enforceable?"},
		{Role: domain.RoleBot, Content: `{"response":"It depends on scope."}`},
	}
	p := BuildPrompt(ModeChat, "What about duration?", history, []string{"nda text"})

	if !strings.Contains(p, "user: Is my NDA enforceable?\n") {
		t.Error("user turn missing")
	}
	if !strings.Contains(p, "bot: {\"response\":\"It depends on scope.\"}\n") {
		t.Error("bot turn missing")
	}
	if strings.Index(p, "user: Is my NDA") > strings.Index(p, "bot: {") {
		t.Error("history out of order")
	}
	if !strings.Contains(p, "Answer the user's last message: What about duration?") {
		t.Error("last message missing")
	}
	if !strings.Contains(p, `"response"`) {
		t.Error("chat JSON shape missing")
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	p := BuildPrompt(ModeVulnerability, "q", nil, nil)
	if !strings.Contains(p, "Context:\n\n") {
		t.Error("empty context should render as empty section")
	}
}

func TestBuildAskPrompt(t *testing.T) {
	p := BuildAskPrompt("Who owns the IP?", []string{"a", "b"})
	if !strings.Contains(p, "Context:\na\n\nb") {
		t.Error("context not joined")
	}
	if strings.Contains(p, "JSON") {
		t.Error("ask prompt should not impose a JSON contract")
	}
}

func TestBuildReviewPrompt(t *testing.T) {
	p := BuildReviewPrompt("full contract text")
	if !strings.Contains(p, "Review this contract for legal risks") {
		t.Error("review instruction missing")
	}
	if !strings.HasSuffix(p, "full contract text") {
		t.Error("document text should end the prompt")
	}
}
