package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"ballknowledge-game-service/internal/domain"
)

const leaderboardKey = "quiz:leaderboard"

// ScoreStore keeps the leaderboard as an append-only Redis list under a
// single key, one JSON entry per element.
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := s.client.RPush(ctx, leaderboardKey, data).Err(); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Load reads the whole collection. Corrupt elements are skipped rather
// than failing the read; a missing key yields an empty collection.
func (s *ScoreStore) Load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	raw, err := s.client.LRange(ctx, leaderboardKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			log.Printf("skipping corrupt leaderboard entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
