package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
)

func TestCacheServiceRoundTrip(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	var out map[string]int
	hit, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, 0))
	hit, err = cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, cache.Invalidate(ctx, "k"))
	hit, err = cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceLock(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	unlock, err := cache.Lock(ctx, "lease", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lease"))

	_, err = cache.Lock(ctx, "lease", time.Minute)
	assert.ErrorIs(t, err, appErrors.ErrLockHeld)

	unlock(ctx)
	assert.False(t, mr.Exists("lease"))
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())

	disabled := NewCacheService(nil, nil, 0, zap.NewNop(), true)
	hit, err := disabled.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)

	unlock, err := nilCache.Lock(context.Background(), "lease", time.Minute)
	require.NoError(t, err)
	unlock(context.Background())
}
