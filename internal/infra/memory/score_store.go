package memory

import (
	"context"
	"sync"

	"ballknowledge-game-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore, used when
// no durable backend is configured and in tests.
type ScoreStore struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *ScoreStore) Load(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LeaderboardEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
