package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lesson-quiz-service/internal/app"
	"lesson-quiz-service/internal/domain"
)

// RankingCache wraps an AttemptStore with a Redis snapshot of each quiz's
// full sorted ranking. Reads serve from the snapshot when present; every
// accepted write drops it so the next read rebuilds from the store. Writes
// and the uniqueness guarantee always go to the inner store; the cache is
// never authoritative.
type RankingCache struct {
	app.AttemptStore

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewRankingCache(client *redis.Client, store app.AttemptStore, ttl time.Duration) *RankingCache {
	return &RankingCache{
		AttemptStore: store,
		client:       client,
		ttl:          ttl,
	}
}

func (c *RankingCache) RecordAttempt(ctx context.Context, entry domain.RankingEntry) error {
	if err := c.AttemptStore.RecordAttempt(ctx, entry); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.rankingKey(entry.QuizID)).Err()
	return nil
}

func (c *RankingCache) TopRanking(ctx context.Context, quizID string, limit int) ([]domain.RankingEntry, error) {
	entries, err := c.fullRanking(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *RankingCache) UserPlacement(ctx context.Context, userID, quizID string) (int, error) {
	entries, err := c.fullRanking(ctx, quizID)
	if err != nil {
		return 0, err
	}
	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, domain.ErrNotRanked
}

// fullRanking returns the complete sorted ranking, snapshot-first.
func (c *RankingCache) fullRanking(ctx context.Context, quizID string) ([]domain.RankingEntry, error) {
	key := c.rankingKey(quizID)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil && len(data) > 0 {
		var entries []domain.RankingEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		entries, err := c.AttemptStore.TopRanking(ctx, quizID, 0)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(entries); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttl).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RankingEntry), nil
}

func (c *RankingCache) rankingKey(quizID string) string {
	return "quiz:" + quizID + ":ranking"
}
