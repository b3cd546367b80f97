package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/pkg/metrics"
	"github.com/soundofguitara/parma/pkg/redis"
)

// Cached collections.
const (
	collBatches     = "batches"
	collAssignments = "assignments"
	collOperators   = "operators"
	collAnomalies   = "anomalies"
	collPlanning    = "planning"
	collDashboard   = "dashboard"
)

// Collections evicted by a mutation of each entity. Derived fields of a
// batch depend on its assignments, operator stats depend on assignments,
// and the dashboard reads all three.
var invalidations = map[string][]string{
	collBatches:     {collBatches, collPlanning, collAnomalies, collDashboard},
	collAssignments: {collAssignments, collBatches, collOperators, collDashboard},
	collOperators:   {collOperators, collAssignments, collBatches, collAnomalies, collDashboard},
	collAnomalies:   {collAnomalies, collBatches, collAssignments, collDashboard},
	collPlanning:    {collPlanning},
}

// QueryCache short-lived snapshots of read responses, implemented by the
// Redis client.
type QueryCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, collections ...string) error
}

// cacheLayer is safe to use with a nil cache: every read goes to the store.
type cacheLayer struct {
	cache   QueryCache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// cachedRead serves collection/query from the cache or fills it with load.
// Cache failures are logged and never fail the read.
func cachedRead[T any](ctx context.Context, c *cacheLayer, collection, query string, load func() (T, error)) (T, error) {
	if c == nil || c.cache == nil {
		return load()
	}

	key := redis.CacheKey(collection, query)
	var hit T
	ok, err := c.cache.GetJSON(ctx, key, &hit)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.metrics.CacheLookup(collection, ok)
	if ok {
		return hit, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// invalidate evicts everything a mutation of entity may have changed.
func (c *cacheLayer) invalidate(ctx context.Context, entity string) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, invalidations[entity]...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("entity", entity), zap.Error(err))
	}
}
