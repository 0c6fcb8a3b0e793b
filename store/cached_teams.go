package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"delliapp/cache"
	"delliapp/models"

	"go.uber.org/zap"
)

// TeamSource is what CachedTeams sits in front of.
type TeamSource interface {
	FindBySlug(ctx context.Context, slug string) (*models.Team, error)
}

// CachedTeams caches slug lookups. Misses are not cached so a new team is visible at once.
type CachedTeams struct {
	src TeamSource
	kv  cache.KV
	ttl time.Duration
	log *zap.Logger
}

func NewCachedTeams(src TeamSource, kv cache.KV, ttl time.Duration, log *zap.Logger) *CachedTeams {
	return &CachedTeams{src: src, kv: kv, ttl: ttl, log: log}
}

func teamKey(slug string) string { return "team:slug:" + strings.ToLower(slug) }

func (c *CachedTeams) FindBySlug(ctx context.Context, slug string) (*models.Team, error) {
	key := teamKey(slug)
	raw, err := c.kv.Get(ctx, key)
	if err == nil {
		var t models.Team
		if err := json.Unmarshal([]byte(raw), &t); err == nil {
			return &t, nil
		}
		c.log.Warn("discarding undecodable cached team", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("team cache read failed", zap.String("key", key), zap.Error(err))
	}

	t, err := c.src.FindBySlug(ctx, slug)
	if err != nil || t == nil {
		return t, err
	}
	if b, err := json.Marshal(t); err == nil {
		if err := c.kv.Set(ctx, key, string(b), c.ttl); err != nil {
			c.log.Warn("team cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return t, nil
}

// Invalidate drops the cached entry for slug.
func (c *CachedTeams) Invalidate(ctx context.Context, slug string) {
	if err := c.kv.Del(ctx, teamKey(slug)); err != nil {
		c.log.Warn("team cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}
