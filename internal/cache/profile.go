// Package cache holds the durable key-value cache for the current user's
// profile and the one-shot first-run marker. Redis backs it in production;
// a map-backed implementation keeps the service working when Redis is
// unreachable, at the cost of losing the fast-first-paint profile across
// restarts.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/crescendo-app/crescendo/internal/model"
)

const (
	profileKey = "userProfile"
	clearedKey = "library:cleared"
)

// ProfileCache stores the current user's profile for fast hydration on
// startup, plus the marker that short-circuits the legacy one-time clear
// step before seeding.
type ProfileCache interface {
	// Profile returns the cached profile, or (nil, nil) when none is stored.
	Profile(ctx context.Context) (*model.User, error)
	SetProfile(ctx context.Context, u model.User) error
	// Cleared reports whether the one-shot clear marker has been set.
	Cleared(ctx context.Context) (bool, error)
	MarkCleared(ctx context.Context) error
}

// RedisCache implements ProfileCache on a Redis client.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

func (c *RedisCache) Profile(ctx context.Context) (*model.User, error) {
	body, err := c.rdb.Get(ctx, profileKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		// A corrupt cached profile is treated as absent; the caller falls
		// back to the default profile and overwrites the key on next save.
		return nil, nil
	}
	return &u, nil
}

func (c *RedisCache) SetProfile(ctx context.Context, u model.User) error {
	body, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, profileKey, body, 0).Err()
}

func (c *RedisCache) Cleared(ctx context.Context) (bool, error) {
	v, err := c.rdb.Get(ctx, clearedKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (c *RedisCache) MarkCleared(ctx context.Context) error {
	return c.rdb.Set(ctx, clearedKey, "true", 0).Err()
}

// MemoryCache is the redis-less fallback and the test implementation.
type MemoryCache struct {
	mu      sync.Mutex
	profile *model.User
	cleared bool
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Profile(context.Context) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil, nil
	}
	u := *c.profile
	return &u, nil
}

func (c *MemoryCache) SetProfile(_ context.Context, u model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = &u
	return nil
}

func (c *MemoryCache) Cleared(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared, nil
}

func (c *MemoryCache) MarkCleared(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = true
	return nil
}
