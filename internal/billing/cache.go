package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheConfig controls the short-lived provider record cache.
type CacheConfig struct {
	Enabled bool          `env:"PROVIDER_CACHE_ENABLED" envDefault:"false"` // Enabled turns the redis record cache on.
	TTL     time.Duration `env:"PROVIDER_CACHE_TTL" envDefault:"5m"`        // TTL is how long a fetched record stays valid.
}

// RecordCache caches provider records keyed by notification subject. The
// provider redelivers notifications aggressively; a short TTL absorbs those
// bursts without persisting notification ids, and an expired entry simply
// triggers a fresh lookup.
type RecordCache interface {
	Get(ctx context.Context, key string) (*Record, bool)
	Set(ctx context.Context, key string, rec *Record)
}

type redisRecordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecordCache returns a RecordCache backed by redis.
func NewRedisRecordCache(client *redis.Client, ttl time.Duration) RecordCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisRecordCache{client: client, ttl: ttl}
}

func cacheKey(key string) string {
	return "billing:record:" + key
}

func (c *redisRecordCache) Get(ctx context.Context, key string) (*Record, bool) {
	data, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (c *redisRecordCache) Set(ctx context.Context, key string, rec *Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	// Cache writes are best effort; a miss just costs one provider lookup.
	_ = c.client.Set(ctx, cacheKey(key), data, c.ttl).Err()
}
