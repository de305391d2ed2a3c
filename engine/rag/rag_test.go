package rag

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/engine/history"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
)

type mockEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.texts = append(m.texts, text)
	return m.vector, m.err
}

type mockSearcher struct {
	matches  []semantic.Match
	err      error
	topK     int
	category string
}

func (m *mockSearcher) Query(_ context.Context, _ []float32, topK int, category string) ([]semantic.Match, error) {
	m.topK = topK
	m.category = category
	return m.matches, m.err
}

type mockGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func newService(e *mockEmbedder, s *mockSearcher, g *mockGenerator) (*Service, *history.Store) {
	h := history.New()
	return New(e, s, g, h, Options{}, nil), h
}

func twoMatches() []semantic.Match {
	return []semantic.Match{
		{ID: "a", Text: "Clause 1: liability is unlimited.", Score: 0.9},
		{ID: "b", Text: "Clause 2: term renews automatically.", Score: 0.8},
	}
}

func TestVulnerabilities(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{matches: twoMatches()}
	g := &mockGenerator{reply: "```json\n{\"document_name\":\"nda\",\"summary\":\"risky\",\"sections\":[]}\n```"}
	svc, _ := newService(e, s, g)

	out, err := svc.Vulnerabilities(context.Background(), "what is risky?", "IP Law")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report VulnerabilityReport
	if err := json.Unmarshal(out, &report); err != nil {
		t.Fatalf("output should decode into the report contract: %v", err)
	}
	if report.DocumentName != "nda" {
		t.Errorf("unexpected report: %+v", report)
	}
	if s.topK != 5 {
		t.Errorf("expected topK 5, got %d", s.topK)
	}
	if s.category != "IP Law" {
		t.Errorf("category not forwarded: %q", s.category)
	}
	if !strings.Contains(g.prompts[0], "Clause 1: liability is unlimited.") {
		t.Error("retrieved context missing from prompt")
	}
}

func TestVulnerabilities_DefaultQuery(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{}
	g := &mockGenerator{reply: `{"document_name":"","summary":"","sections":[]}`}
	svc, _ := newService(e, s, g)

	if _, err := svc.Vulnerabilities(context.Background(), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.texts[0] != DefaultVulnerabilityQuery {
		t.Errorf("empty query should fall back to default, embedded %q", e.texts[0])
	}
}

func TestEmail(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{matches: twoMatches()}
	g := &mockGenerator{reply: `{"subject":"Re: renewal","body":"Dear counterparty"}`}
	svc, _ := newService(e, s, g)

	out, err := svc.Email(context.Background(), "decline the renewal", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var draft EmailDraft
	if err := json.Unmarshal(out, &draft); err != nil {
		t.Fatalf("output should decode into the email contract: %v", err)
	}
	if draft.Subject != "Re: renewal" {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestChat_RecordsHistory(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{matches: twoMatches()}
	g := &mockGenerator{reply: `{"response":"Scope matters."}`}
	svc, h := newService(e, s, g)

	out, err := svc.Chat(context.Background(), "sess-1", "Is my NDA enforceable?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reply ChatReply
	if err := json.Unmarshal(out, &reply); err != nil {
		t.Fatalf("output should decode into the chat contract: %v", err)
	}

	turns := h.Turns("sess-1")
	if len(turns) != 2 {
		t.Fatalf("expected user and bot turns, got %d", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[0].Content != "Is my NDA enforceable?" {
		t.Errorf("user turn wrong: %+v", turns[0])
	}
	if turns[1].Role != domain.RoleBot || turns[1].Content != `{"response":"Scope matters."}` {
		t.Errorf("bot turn should carry raw model text: %+v", turns[1])
	}
	if !strings.Contains(g.prompts[0], "user: Is my NDA enforceable?") {
		t.Error("current user turn should appear in the rendered history")
	}
}

func TestChat_RetrievalFailureStillRecordsUserTurn(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{err: errors.New("qdrant down")}
	g := &mockGenerator{}
	svc, h := newService(e, s, g)

	_, err := svc.Chat(context.Background(), "sess-1", "hello", "")
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
	if len(h.Turns("sess-1")) != 1 {
		t.Error("user turn should be recorded before retrieval")
	}
	if len(g.prompts) != 0 {
		t.Error("generator should not run after retrieval failure")
	}
}

func TestAsk(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{matches: twoMatches()}
	g := &mockGenerator{reply: "The liability clause is the main risk."}
	svc, _ := newService(e, s, g)

	answer, err := svc.Ask(context.Background(), "what is the main risk?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "The liability clause is the main risk." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if s.topK != 3 {
		t.Errorf("ask should search with topK 3, got %d", s.topK)
	}
}

func TestAsk_NoMatches(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{}
	g := &mockGenerator{}
	svc, _ := newService(e, s, g)

	answer, err := svc.Ask(context.Background(), "anything?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != NoResults {
		t.Errorf("expected %q, got %q", NoResults, answer)
	}
	if len(g.prompts) != 0 {
		t.Error("generator should not run without matches")
	}
}

func TestReview_SkipsRetrieval(t *testing.T) {
	e := &mockEmbedder{}
	s := &mockSearcher{}
	g := &mockGenerator{reply: "1. Unlimited liability.\n2. Auto-renewal."}
	svc, _ := newService(e, s, g)

	review, err := svc.Review(context.Background(), "full contract text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review == "" {
		t.Fatal("expected review text")
	}
	if len(e.texts) != 0 {
		t.Error("review should not embed anything")
	}
	if !strings.Contains(g.prompts[0], "full contract text") {
		t.Error("document text missing from review prompt")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		e := &mockEmbedder{err: errors.New("gemini 500")}
		svc, _ := newService(e, &mockSearcher{}, &mockGenerator{})
		_, err := svc.Vulnerabilities(context.Background(), "q", "")
		if !errors.Is(err, domain.ErrEmbedding) {
			t.Errorf("expected ErrEmbedding, got %v", err)
		}
	})

	t.Run("retrieval failure", func(t *testing.T) {
		s := &mockSearcher{err: errors.New("qdrant down")}
		svc, _ := newService(&mockEmbedder{vector: []float32{1}}, s, &mockGenerator{})
		_, err := svc.Email(context.Background(), "q", "")
		if !errors.Is(err, domain.ErrRetrieval) {
			t.Errorf("expected ErrRetrieval, got %v", err)
		}
	})

	t.Run("completion failure", func(t *testing.T) {
		g := &mockGenerator{err: errors.New("model overloaded")}
		svc, _ := newService(&mockEmbedder{vector: []float32{1}}, &mockSearcher{}, g)
		_, err := svc.Vulnerabilities(context.Background(), "q", "")
		if !errors.Is(err, domain.ErrCompletion) {
			t.Errorf("expected ErrCompletion, got %v", err)
		}
	})

	t.Run("parse failure", func(t *testing.T) {
		g := &mockGenerator{reply: "sorry, no JSON today"}
		svc, _ := newService(&mockEmbedder{vector: []float32{1}}, &mockSearcher{}, g)
		_, err := svc.Vulnerabilities(context.Background(), "q", "")
		var perr *domain.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected ParseError, got %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		svc, _ := newService(&mockEmbedder{}, &mockSearcher{}, &mockGenerator{})
		_, err := svc.Email(context.Background(), "   ", "")
		if !errors.Is(err, domain.ErrUnsupportedInput) {
			t.Errorf("expected ErrUnsupportedInput, got %v", err)
		}
	})
}

func TestZeroMatchesStillAnswers(t *testing.T) {
	e := &mockEmbedder{vector: []float32{0.1}}
	s := &mockSearcher{}
	g := &mockGenerator{reply: `{"response":"I lack context but here goes."}`}
	svc, _ := newService(e, s, g)

	out, err := svc.Chat(context.Background(), "sess", "hello", "")
	if err != nil {
		t.Fatalf("zero matches should not fail interactive modes: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected an answer")
	}
}
