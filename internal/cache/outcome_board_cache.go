package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"gritinterview/internal/model"
)

const outcomeBoardKey = "outcomes:board"

// OutcomeBoardCache ranks completed sessions by composite outcome (ZSET)
type OutcomeBoardCache interface {
	Record(ctx context.Context, sessionID string, value int) error
	GetTop(ctx context.Context, limit int) ([]model.OutcomeEntry, error)
	GetRank(ctx context.Context, sessionID string) (int64, error)
}

type outcomeBoardCache struct {
	client *redis.Client
}

// NewOutcomeBoardCache creates a new outcome board
func NewOutcomeBoardCache(client *redis.Client) OutcomeBoardCache {
	return &outcomeBoardCache{
		client: client,
	}
}

func (c *outcomeBoardCache) Record(ctx context.Context, sessionID string, value int) error {
	return c.client.ZAdd(ctx, outcomeBoardKey, redis.Z{
		Score:  float64(value),
		Member: sessionID,
	}).Err()
}

func (c *outcomeBoardCache) GetTop(ctx context.Context, limit int) ([]model.OutcomeEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, outcomeBoardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.OutcomeEntry, len(results))
	for i, z := range results {
		entries[i] = model.OutcomeEntry{
			SessionID: z.Member.(string),
			Value:     int(z.Score),
			Rank:      i + 1,
		}
	}
	return entries, nil
}

func (c *outcomeBoardCache) GetRank(ctx context.Context, sessionID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, outcomeBoardKey, sessionID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
