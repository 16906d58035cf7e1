package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "nutrition:ai:"

// unknownMarker caches a "not a food" answer so it isn't asked again.
const unknownMarker = "unknown"

// CachedLookup puts a redis cache-aside in front of an AILookup, keyed by
// normalized name. Redis failures fall through to the wrapped lookup.
type CachedLookup struct {
	next   AILookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLookup(next AILookup, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedLookup {
	return &CachedLookup{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func (c *CachedLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	key := cacheKeyPrefix + NormalizeName(name)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.NutritionLookups.WithLabelValues("cache").Inc()
		if cached == unknownMarker {
			return nil, nil
		}
		var rec Record
		if jsonErr := json.Unmarshal([]byte(cached), &rec); jsonErr == nil {
			return &rec, nil
		}
		c.logger.Warn("discarding corrupt nutrition cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("nutrition cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	rec, err := c.next.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	value := unknownMarker
	if rec != nil {
		b, _ := json.Marshal(rec)
		value = string(b)
	}
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("nutrition cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return rec, nil
}
