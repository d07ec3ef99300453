// internal/store/cache.go
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/metrics"
)

const cacheKeyPrefix = "appraisal:result:"

// ResultCache maps a request fingerprint to the run id of an identical prior
// evaluation. The pipeline is deterministic, so serving the cached run is
// exact, not approximate.
type ResultCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

// Lookup returns the run id cached for a fingerprint, or "" on a miss. Cache
// failures degrade to a miss rather than failing the evaluation.
func (c *ResultCache) Lookup(ctx context.Context, fingerprint string) string {
	runID, err := c.redis.Get(ctx, cacheKeyPrefix+fingerprint)
	if err == redis.Nil {
		metrics.ResultCacheHits.WithLabelValues("miss").Inc()
		return ""
	}
	if err != nil {
		metrics.ResultCacheHits.WithLabelValues("error").Inc()
		c.logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	metrics.ResultCacheHits.WithLabelValues("hit").Inc()
	return runID
}

// Store records the fingerprint -> run id mapping.
func (c *ResultCache) Store(ctx context.Context, fingerprint, runID string) error {
	if err := c.redis.Set(ctx, cacheKeyPrefix+fingerprint, runID, c.ttl); err != nil {
		return errors.NewCacheWriteFailedError(err)
	}
	return nil
}
