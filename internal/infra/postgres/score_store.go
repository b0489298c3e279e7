package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ballknowledge-game-service/internal/domain"
)

// ScoreStore persists leaderboard entries in Postgres. Rows are insert
// only; ranking happens in the application layer.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (name, score, topic, played_at, game_mode) VALUES ($1, $2, $3, $4, $5)`,
		entry.Name, entry.Score, entry.Topic, entry.Date, string(entry.GameMode))
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) Load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, score, topic, played_at, game_mode FROM scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		var mode string
		if err := rows.Scan(&entry.Name, &entry.Score, &entry.Topic, &entry.Date, &mode); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entry.GameMode = domain.GameMode(mode)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return entries, nil
}
