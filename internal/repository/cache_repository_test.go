package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "scoring:", nil)
	ctx := context.Background()

	var dest map[string]interface{}
	err := repo.Get(ctx, "term-results:school-1:stu-1:term-1:all", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "term-results:*"))
	require.NoError(t, repo.Close())
}

func TestCacheRepositoryPrefixesKeys(t *testing.T) {
	repo := NewCacheRepository(nil, "scoring:", nil)
	assert.Equal(t, "scoring:term-results:school-1:stu-1:term-1:published", repo.key("term-results:school-1:stu-1:term-1:published"))
}

func TestCacheRepositoryUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	repo := NewCacheRepository(client, "scoring:", nil)
	defer repo.Close() //nolint:errcheck

	var dest map[string]interface{}
	err := repo.Get(context.Background(), "missing", &dest)
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
}
