package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cachePrefix = "cache:"

// CacheKey builds the key of a cached read on a collection.
func CacheKey(collection, query string) string {
	if query == "" {
		query = "all"
	}
	return cachePrefix + collection + ":" + query
}

// GetJSON decodes a cached value into dest. It reports false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Stale layout after a deploy: drop it and treat as a miss.
		c.rdb.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON stores value under key for ttl.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Invalidate evicts every cached read of the given collections.
func (c *Client) Invalidate(ctx context.Context, collections ...string) error {
	for _, collection := range collections {
		iter := c.rdb.Scan(ctx, 0, cachePrefix+collection+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
		c.logger.Debug("cache invalidated",
			zap.String("collection", collection),
			zap.Int("keys", len(keys)),
		)
	}
	return nil
}
