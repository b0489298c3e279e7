// Package chat holds the assistant conversation state. A Session is an
// explicitly owned object created on first use by whoever serves the
// conversation; there is no process-wide handle.
package chat

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"ballknowledge-game-service/internal/domain"
)

// Replier produces one assistant reply for the conversation so far.
// content.GeminiClient satisfies this.
type Replier interface {
	Chat(ctx context.Context, history []domain.ChatMessage, prompt string) (string, error)
}

// HistoryStore persists the conversation between sessions. Optional; a
// nil store keeps history in memory only.
type HistoryStore interface {
	SaveHistory(ctx context.Context, history []domain.ChatMessage) error
	LoadHistory(ctx context.Context) ([]domain.ChatMessage, error)
}

// Session is one owned conversation with the assistant.
type Session struct {
	replier Replier
	store   HistoryStore

	mu      sync.Mutex
	history []domain.ChatMessage
	loaded  bool
}

func NewSession(replier Replier, store HistoryStore) *Session {
	return &Session{replier: replier, store: store}
}

// Send appends the user's message, obtains a reply, and persists the
// updated history best-effort. Storage failures are logged, never
// surfaced; the in-memory conversation stays valid.
func (s *Session) Send(ctx context.Context, prompt string) (domain.ChatMessage, error) {
	s.mu.Lock()
	s.loadLocked(ctx)
	history := make([]domain.ChatMessage, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	reply, err := s.replier.Chat(ctx, history, prompt)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	userMsg := domain.ChatMessage{ID: uuid.New().String(), Role: "user", Text: prompt}
	modelMsg := domain.ChatMessage{ID: uuid.New().String(), Role: "model", Text: reply}

	s.mu.Lock()
	s.history = append(s.history, userMsg, modelMsg)
	snapshot := make([]domain.ChatMessage, len(s.history))
	copy(snapshot, s.history)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveHistory(ctx, snapshot); err != nil {
			log.Printf("chat: save history: %v", err)
		}
	}
	return modelMsg, nil
}

// History returns a copy of the conversation so far.
func (s *Session) History(ctx context.Context) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// loadLocked pulls persisted history once per session lifetime. Read
// failures degrade to an empty conversation.
func (s *Session) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.store == nil {
		return
	}
	history, err := s.store.LoadHistory(ctx)
	if err != nil {
		log.Printf("chat: load history: %v", err)
		return
	}
	s.history = history
}
