// Package rag orchestrates the retrieval-augmented pipeline. It embeds a
// user query, searches the vector store for relevant chunks, builds a
// mode-specific prompt, calls the completion model, and normalizes the
// model output into a JSON contract.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/engine/semantic"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs a similarity query against the vector store.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int, category string) ([]semantic.Match, error)
}

// Generator runs one completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HistoryStore keeps per-session conversation transcripts.
type HistoryStore interface {
	Append(sessionID string, turn domain.Turn)
	Turns(sessionID string) []domain.Turn
}

// Options configures the pipeline.
type Options struct {
	// TopK is how many chunks back an interactive answer.
	TopK int
	// AskTopK is how many chunks back a free-text answer.
	AskTopK int
	// SearchTimeout bounds the vector store query.
	SearchTimeout time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		TopK:          5,
		AskTopK:       3,
		SearchTimeout: 5 * time.Second,
	}
}

// DefaultVulnerabilityQuery is used when a vulnerability request arrives
// without an explicit question.
const DefaultVulnerabilityQuery = "Identify the legal vulnerabilities, risks, and flaws in the ingested documents."

// NoResults is returned by Ask when retrieval finds nothing.
const NoResults = "No relevant results found."

// Service is the pipeline orchestrator.
type Service struct {
	embed   Embedder
	search  Searcher
	gen     Generator
	history HistoryStore
	opts    Options
	logger  *slog.Logger
}

// New creates a Service.
func New(embed Embedder, search Searcher, gen Generator, history HistoryStore, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.AskTopK <= 0 {
		opts.AskTopK = DefaultOptions().AskTopK
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultOptions().SearchTimeout
	}
	return &Service{
		embed:   embed,
		search:  search,
		gen:     gen,
		history: history,
		opts:    opts,
		logger:  logger,
	}
}

// Vulnerabilities produces a structured vulnerability report for the
// query. An empty query falls back to DefaultVulnerabilityQuery.
func (s *Service) Vulnerabilities(ctx context.Context, query, category string) (json.RawMessage, error) {
	if query == "" {
		query = DefaultVulnerabilityQuery
	}
	if err := domain.ValidateQuery(query); err != nil {
		return nil, err
	}

	contextParts, err := s.retrieve(ctx, query, s.opts.TopK, category)
	if err != nil {
		return nil, err
	}
	return s.generateJSON(ctx, BuildPrompt(ModeVulnerability, query, nil, contextParts))
}

// Email drafts an email for the request, grounded in retrieved chunks.
func (s *Service) Email(ctx context.Context, query, category string) (json.RawMessage, error) {
	if err := domain.ValidateQuery(query); err != nil {
		return nil, err
	}

	contextParts, err := s.retrieve(ctx, query, s.opts.TopK, category)
	if err != nil {
		return nil, err
	}
	return s.generateJSON(ctx, BuildPrompt(ModeEmail, query, nil, contextParts))
}

// Chat answers a conversational message. The user turn is recorded
// before retrieval and the raw model reply after, so a failed turn still
// appears in the transcript.
func (s *Service) Chat(ctx context.Context, sessionID, message, category string) (json.RawMessage, error) {
	if err := domain.ValidateQuery(message); err != nil {
		return nil, err
	}

	s.history.Append(sessionID, domain.Turn{Role: domain.RoleUser, Content: message})
	transcript := s.history.Turns(sessionID)

	contextParts, err := s.retrieve(ctx, message, s.opts.TopK, category)
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.Generate(ctx, BuildPrompt(ModeChat, message, transcript, contextParts))
	if err != nil {
		return nil, fmt.Errorf("rag: chat completion: %w: %w", domain.ErrCompletion, err)
	}
	s.history.Append(sessionID, domain.Turn{Role: domain.RoleBot, Content: raw})

	return Normalize(raw)
}

// Ask answers a free-text question. When retrieval finds no chunks the
// model is not called and NoResults is returned.
func (s *Service) Ask(ctx context.Context, query, category string) (string, error) {
	if err := domain.ValidateQuery(query); err != nil {
		return "", err
	}

	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("rag: embed query: %w: %w", domain.ErrEmbedding, err)
	}

	matches, err := s.searchWithTimeout(ctx, vector, s.opts.AskTopK, category)
	if err != nil {
		return "", fmt.Errorf("rag: search: %w: %w", domain.ErrRetrieval, err)
	}
	if len(matches) == 0 {
		return NoResults, nil
	}

	answer, err := s.gen.Generate(ctx, BuildAskPrompt(query, matchTexts(matches)))
	if err != nil {
		return "", fmt.Errorf("rag: ask completion: %w: %w", domain.ErrCompletion, err)
	}
	return answer, nil
}

// Review analyzes a full contract text for risks. No retrieval is
// involved; the document itself is the context.
func (s *Service) Review(ctx context.Context, text string) (string, error) {
	if err := domain.ValidateQuery(text); err != nil {
		return "", err
	}

	review, err := s.gen.Generate(ctx, BuildReviewPrompt(text))
	if err != nil {
		return "", fmt.Errorf("rag: review completion: %w: %w", domain.ErrCompletion, err)
	}
	return review, nil
}

// History returns the transcript of a session.
func (s *Service) History(sessionID string) []domain.Turn {
	return s.history.Turns(sessionID)
}

// retrieve embeds the query and returns the texts of the topK nearest
// chunks. Zero matches is not an error; the prompt just carries an
// empty context.
func (s *Service) retrieve(ctx context.Context, query string, topK int, category string) ([]string, error) {
	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w: %w", domain.ErrEmbedding, err)
	}

	matches, err := s.searchWithTimeout(ctx, vector, topK, category)
	if err != nil {
		return nil, fmt.Errorf("rag: search: %w: %w", domain.ErrRetrieval, err)
	}
	s.logger.Info("retrieval done", "matches", len(matches), "top_k", topK, "category", category)

	return matchTexts(matches), nil
}

func (s *Service) searchWithTimeout(ctx context.Context, vector []float32, topK int, category string) ([]semantic.Match, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()
	return s.search.Query(searchCtx, vector, topK, category)
}

func (s *Service) generateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("rag: completion: %w: %w", domain.ErrCompletion, err)
	}
	return Normalize(raw)
}

func matchTexts(matches []semantic.Match) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}
