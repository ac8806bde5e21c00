package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewCacheRepository(client, zap.NewNop())
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "courses:list:all", []int{1, 2}, time.Minute))

	var got []int
	require.NoError(t, repo.Get(ctx, "courses:list:all", &got))
	assert.Equal(t, []int{1, 2}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:all", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "courses:list:a", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:list:b", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "other:key", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "courses:list:*"))
	assert.False(t, mr.Exists("courses:list:a"))
	assert.False(t, mr.Exists("courses:list:b"))
	assert.True(t, mr.Exists("other:key"))

	require.NoError(t, repo.DeleteByPattern(ctx, "missing:*"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()
	var dest string
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryDeleteByPatternManyKeys(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("courses:list:%d", i), "[]"))
	}
	require.NoError(t, repo.DeleteByPattern(ctx, "courses:list:*"))
	assert.Empty(t, mr.Keys())
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryCounter(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	n, err := repo.Counter(ctx, "courses:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.Incr(ctx, "courses:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Counter(ctx, "courses:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.DeleteByPattern(ctx, "courses:list:*"))
	assert.True(t, mr.Exists("courses:generation"))
}
