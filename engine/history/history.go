// Package history keeps per-session conversation transcripts in memory.
// Sessions live for the process lifetime; there is no persistence.
package history

import (
	"sync"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
)

// Store holds conversation turns keyed by session id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
	// maxTurns bounds each session; 0 means unbounded.
	maxTurns int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns caps a session's transcript, dropping oldest turns first.
func WithMaxTurns(n int) Option {
	return func(s *Store) { s.maxTurns = n }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{sessions: make(map[string][]domain.Turn)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Append adds a turn to the session transcript.
func (s *Store) Append(sessionID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[sessionID], turn)
	if s.maxTurns > 0 && len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[sessionID] = turns
}

// Turns returns a copy of the session transcript in order.
func (s *Store) Turns(sessionID string) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes a session.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
