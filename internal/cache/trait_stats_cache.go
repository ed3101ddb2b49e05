package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"gritinterview/internal/model"
)

const traitStatsKey = "traits:stats"

// TraitTotals is the raw per-trait aggregate
type TraitTotals struct {
	Count int64
	Sum   float64
}

// TraitStatsCache aggregates scores per trait across sessions (HASH)
type TraitStatsCache interface {
	AddScore(ctx context.Context, dim model.TraitDimension, score float64) error
	GetAll(ctx context.Context) (map[model.TraitDimension]TraitTotals, error)
}

type traitStatsCache struct {
	client *redis.Client
}

// NewTraitStatsCache creates a new trait stats cache
func NewTraitStatsCache(client *redis.Client) TraitStatsCache {
	return &traitStatsCache{client: client}
}

func (c *traitStatsCache) AddScore(ctx context.Context, dim model.TraitDimension, score float64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, traitStatsKey, fmt.Sprintf("%d:count", dim), 1)
		pipe.HIncrByFloat(ctx, traitStatsKey, fmt.Sprintf("%d:sum", dim), score)
		return nil
	})
	return err
}

func (c *traitStatsCache) GetAll(ctx context.Context) (map[model.TraitDimension]TraitTotals, error) {
	fields, err := c.client.HGetAll(ctx, traitStatsKey).Result()
	if err != nil {
		return nil, err
	}

	totals := make(map[model.TraitDimension]TraitTotals)
	for field, value := range fields {
		dimStr, kind, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		d, err := strconv.Atoi(dimStr)
		if err != nil {
			continue
		}
		dim := model.TraitDimension(d)
		t := totals[dim]
		switch kind {
		case "count":
			t.Count, _ = strconv.ParseInt(value, 10, 64)
		case "sum":
			t.Sum, _ = strconv.ParseFloat(value, 64)
		}
		totals[dim] = t
	}
	return totals, nil
}
