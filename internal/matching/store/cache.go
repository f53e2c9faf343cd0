// internal/matching/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venture-match/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "match:"

// ErrCacheMiss is returned when no cached record exists for an identity.
var ErrCacheMiss = errors.New("match cache miss")

// RedisCache is a read-through cache of live records keyed by identity.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a match cache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey returns the Redis key for a match.
func CacheKey(startupID, investorID, matchType string) string {
	return fmt.Sprintf("%s%s:%s:%s", cacheKeyPrefix, startupID, investorID, matchType)
}

func (c *RedisCache) Get(ctx context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error) {
	val, err := c.client.Get(ctx, CacheKey(startupID, investorID, matchType)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec models.MatchRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode cached match: %w", err)
	}
	return &rec, nil
}

// Set stores a record until the earlier of the cache TTL and the record's own expiry.
func (c *RedisCache) Set(ctx context.Context, rec *models.MatchRecord, now time.Time) error {
	ttl := c.ttl
	if remaining := rec.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, CacheKey(rec.StartupID, rec.InvestorID, rec.MatchType), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, startupID, investorID, matchType string) error {
	if err := c.client.Del(ctx, CacheKey(startupID, investorID, matchType)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
