// Package cache short-circuits single-resource GET responses. Keys are
// "{Service}:{id}"; lists are never cached. Invalidation is best effort: a
// cache backend outage degrades reads to always-MISS and never breaks writes.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.SugaredLogger
}

func New(client *redis.Client, ttl time.Duration, prefix string, log *zap.SugaredLogger) *Cache {
	return &Cache{client: client, ttl: ttl, prefix: prefix, log: log}
}

func (c *Cache) TTL() time.Duration { return c.ttl }

// Key builds the cache key for one resource of one service.
func (c *Cache) Key(service, id string) string {
	if c.prefix != "" {
		return fmt.Sprintf("%s:%s:%s", c.prefix, service, id)
	}
	return fmt.Sprintf("%s:%s", service, id)
}

// Get returns the cached payload and whether it was present. Backend errors
// are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnw("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores the payload with the configured TTL. Failures are swallowed.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warnw("cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops the key. Failures are logged and swallowed so that cache
// outages never surface to mutation callers.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warnw("cache invalidation failed", "key", key, "error", err)
	}
}

// ETag derives the weak validator served with cached and fresh payloads.
func ETag(payload []byte) string {
	sum := sha1.Sum(payload)
	return fmt.Sprintf(`W/"%s"`, hex.EncodeToString(sum[:8]))
}
