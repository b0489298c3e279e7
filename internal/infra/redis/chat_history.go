package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"ballknowledge-game-service/internal/domain"
)

const chatHistoryKey = "chat:history"

// ChatHistoryStore persists the assistant conversation under one key.
type ChatHistoryStore struct {
	client *redis.Client
}

func NewChatHistoryStore(client *redis.Client) *ChatHistoryStore {
	return &ChatHistoryStore{client: client}
}

func (s *ChatHistoryStore) SaveHistory(ctx context.Context, history []domain.ChatMessage) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.client.Set(ctx, chatHistoryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// LoadHistory returns the stored conversation; absent or corrupt state
// degrades to an empty history.
func (s *ChatHistoryStore) LoadHistory(ctx context.Context) ([]domain.ChatMessage, error) {
	raw, err := s.client.Get(ctx, chatHistoryKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	var history []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		log.Printf("discarding corrupt chat history: %v", err)
		return nil, nil
	}
	return history, nil
}
