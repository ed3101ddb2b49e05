package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gritinterview/internal/model"
)

const liveSessionsKey = "sessions:live"

// SessionCache holds the live state of in-progress interviews
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	// ListLive returns the most recently created live session ids
	ListLive(ctx context.Context, limit int) ([]string, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(session.ID), data, c.ttl)
		pipe.ZAdd(ctx, liveSessionsKey, redis.Z{
			Score:  float64(session.CreatedAt.Unix()),
			Member: session.ID,
		})
		return nil
	})
	return err
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(id))
		pipe.ZRem(ctx, liveSessionsKey, id)
		return nil
	})
	return err
}

func (c *sessionCache) ListLive(ctx context.Context, limit int) ([]string, error) {
	// drop index entries whose state expired
	cutoff := time.Now().Add(-c.ttl).Unix()
	if err := c.client.ZRemRangeByScore(ctx, liveSessionsKey, "-inf", fmt.Sprintf("(%d", cutoff)).Err(); err != nil {
		return nil, err
	}
	return c.client.ZRevRange(ctx, liveSessionsKey, 0, int64(limit-1)).Result()
}
