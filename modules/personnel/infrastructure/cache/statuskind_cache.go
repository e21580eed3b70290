package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
)

const (
	kindsKey = "personnel:status_kinds"
	edgesKey = "personnel:status_transitions"
)

// StatusKindCache fronts the reference-data repository with a redis
// JSON cache. Every failure degrades to a direct read; the cache is an
// optimization, never a source of truth.
type StatusKindCache struct {
	inner  statuskind.Repository
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewStatusKindCache(inner statuskind.Repository, client *redis.Client, ttl time.Duration, log *logrus.Logger) statuskind.Repository {
	return &StatusKindCache{inner: inner, client: client, ttl: ttl, log: log}
}

func (c *StatusKindCache) GetAll(ctx context.Context) ([]statuskind.StatusKind, error) {
	var cached []statuskind.StatusKind
	if c.lookup(ctx, kindsKey, &cached) {
		return cached, nil
	}

	kinds, err := c.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, kindsKey, kinds)
	return kinds, nil
}

func (c *StatusKindCache) GetEdges(ctx context.Context) ([]statuskind.TransitionEdge, error) {
	var cached []statuskind.TransitionEdge
	if c.lookup(ctx, edgesKey, &cached) {
		return cached, nil
	}

	edges, err := c.inner.GetEdges(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, edgesKey, edges)
	return edges, nil
}

// Invalidate drops both keys, e.g. after reference data is reloaded.
func (c *StatusKindCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, kindsKey, edgesKey).Err(); err != nil && c.log != nil {
		c.log.Warnf("statuskind cache: invalidate failed: %v", err)
	}
}

func (c *StatusKindCache) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.log != nil {
			c.log.Warnf("statuskind cache: get %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		if c.log != nil {
			c.log.Warnf("statuskind cache: decode %s failed: %v", key, err)
		}
		return false
	}
	return true
}

func (c *StatusKindCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warnf("statuskind cache: set %s failed: %v", key, err)
	}
}
