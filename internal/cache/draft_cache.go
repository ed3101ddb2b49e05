package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gritinterview/internal/model"
)

// DraftCache keeps a respondent's answer until it has been scored
type DraftCache interface {
	SetDraft(ctx context.Context, sessionID string, draft *model.Draft) error
	GetDraft(ctx context.Context, sessionID string) (*model.Draft, error)
	ClearDraft(ctx context.Context, sessionID string) error
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a new draft cache
func NewDraftCache(client *redis.Client) DraftCache {
	return &draftCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *draftCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:draft", sessionID)
}

func (c *draftCache) SetDraft(ctx context.Context, sessionID string, draft *model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *draftCache) GetDraft(ctx context.Context, sessionID string) (*model.Draft, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft model.Draft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *draftCache) ClearDraft(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
