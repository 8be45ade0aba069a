package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/salon-reports-api/pkg/errors"
)

func newCacheRepoForTest(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewCacheRepository(client, zap.NewNop())
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, mr := newCacheRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "report-template:tpl-1", map[string]string{"name": "Revenue"}, time.Minute))

	var out map[string]string
	require.NoError(t, repo.Get(ctx, "report-template:tpl-1", &out))
	assert.Equal(t, "Revenue", out["name"])

	mr.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "report-template:tpl-1", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDelete(t *testing.T) {
	repo, mr := newCacheRepoForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, repo.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestCacheRepositoryLockIsExclusive(t *testing.T) {
	repo, mr := newCacheRepoForTest(t)
	ctx := context.Background()

	token, err := repo.AcquireLock(ctx, "scan-lock", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = repo.AcquireLock(ctx, "scan-lock", time.Minute)
	assert.ErrorIs(t, err, appErrors.ErrLockHeld)

	require.NoError(t, repo.ReleaseLock(ctx, "scan-lock", "someone-else"))
	assert.True(t, mr.Exists("scan-lock"))

	require.NoError(t, repo.ReleaseLock(ctx, "scan-lock", token))
	assert.False(t, mr.Exists("scan-lock"))

	_, err = repo.AcquireLock(ctx, "scan-lock", time.Minute)
	require.NoError(t, err)
}

func TestCacheRepositoryLockExpires(t *testing.T) {
	repo, mr := newCacheRepoForTest(t)
	ctx := context.Background()

	_, err := repo.AcquireLock(ctx, "scan-lock", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	_, err = repo.AcquireLock(ctx, "scan-lock", time.Second)
	require.NoError(t, err)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out int
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	token, err := repo.AcquireLock(ctx, "scan-lock", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseLock(ctx, "scan-lock", token))
	require.NoError(t, repo.Close())
}
