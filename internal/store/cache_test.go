// internal/store/cache_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { rdb.Close() })

	return NewResultCache(rdb, time.Hour, logger.NewTestLogger(t)), mr
}

func TestResultCache_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.Equal(t, "", cache.Lookup(ctx, "fp-1"))

	require.NoError(t, cache.Store(ctx, "fp-1", "run-1"))
	assert.Equal(t, "run-1", cache.Lookup(ctx, "fp-1"))
}

func TestResultCache_KeysAreNamespaced(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Store(context.Background(), "fp-2", "run-2"))

	got, err := mr.Get(cacheKeyPrefix + "fp-2")
	require.NoError(t, err)
	assert.Equal(t, "run-2", got)
}

func TestResultCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "fp-3", "run-3"))
	mr.FastForward(2 * time.Hour)

	assert.Equal(t, "", cache.Lookup(ctx, "fp-3"))
}

func TestResultCache_ErrorDegradesToMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	assert.Equal(t, "", cache.Lookup(context.Background(), "fp-4"))
}

func TestResultCache_StoreFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	rdb := &database.RedisClient{Client: client}
	cache := NewResultCache(rdb, time.Hour, logger.NewTestLogger(t))

	mock.ExpectSet(cacheKeyPrefix+"fp-5", "run-5", time.Hour).SetErr(assert.AnError)

	err := cache.Store(context.Background(), "fp-5", "run-5")
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCacheWriteFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
