package content

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ballknowledge-game-service/internal/domain"
)

// Cache keeps generated question sets warm per mode and topic so that a
// play-again or a burst of players on the same league does not hammer the
// provider. Concurrent misses for one key collapse into a single
// generation call.
type Cache struct {
	next  Generator
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu     sync.RWMutex
	quiz   map[string]cachedSet[[]domain.QuizQuestion]
	player map[string]cachedSet[[]domain.PlayerQuizQuestion]
}

type cachedSet[T any] struct {
	questions T
	expiresAt time.Time
}

func NewCache(next Generator, ttl time.Duration) *Cache {
	return &Cache{
		next:   next,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		quiz:   make(map[string]cachedSet[[]domain.QuizQuestion]),
		player: make(map[string]cachedSet[[]domain.PlayerQuizQuestion]),
	}
}

func (c *Cache) QuizQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	now := c.clock()
	c.mu.RLock()
	if entry, ok := c.quiz[topic]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("quiz:"+topic, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.quiz[topic]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.next.QuizQuestions(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.quiz[topic] = cachedSet[[]domain.QuizQuestion]{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizQuestion), nil
}

func (c *Cache) PlayerQuizQuestions(ctx context.Context, topic string) ([]domain.PlayerQuizQuestion, error) {
	now := c.clock()
	c.mu.RLock()
	if entry, ok := c.player[topic]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("player:"+topic, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.player[topic]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.next.PlayerQuizQuestions(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.player[topic] = cachedSet[[]domain.PlayerQuizQuestion]{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.PlayerQuizQuestion), nil
}

func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
