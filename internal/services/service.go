// Package services holds the per-resource business rules composing the
// generic repository with the response cache and the task queue.
package services

import (
	"context"

	"go.uber.org/zap"

	"authrelay/internal/cache"
)

// base carries what every resource service shares: its cache namespace and
// the invalidate-before-mutate behavior.
type base struct {
	cache *cache.Cache
	name  string
	log   *zap.SugaredLogger
}

// CacheKey is the key handlers use when caching GET-by-id responses.
func (b base) CacheKey(id string) string {
	return b.cache.Key(b.name, id)
}

// invalidate drops the id's cached response ahead of a mutation. Best
// effort: errors never reach the mutation path.
func (b base) invalidate(ctx context.Context, id string) {
	b.cache.Invalidate(ctx, b.cache.Key(b.name, id))
}
