package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestRedisSessionStore(t *testing.T) {
	s, client := newMiniRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	t.Run("RevokeAndCheck", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("ExpiresWithToken", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-3", time.Now().Add(time.Minute)))
		s.FastForward(2 * time.Minute)

		revoked, err := store.IsRevoked(ctx, "jti-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("AlreadyExpiredIsNoop", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-4", time.Now().Add(-time.Minute)))
		assert.False(t, s.Exists(revokedSessionPrefix+"jti-4"))
	})
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "b", time.Now().Add(-time.Second)))

	revoked, _ := store.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = store.IsRevoked(ctx, "b")
	assert.False(t, revoked)
}

func TestRedisAvailabilityCache(t *testing.T) {
	_, client := newMiniRedis(t)
	cache := NewRedisAvailabilityCache(client, time.Minute)
	ctx := context.Background()
	worker := int64(5)

	t.Run("MissThenHit", func(t *testing.T) {
		got, err := cache.Get(ctx, 1, "2026-03-02", nil)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, cache.Set(ctx, 1, "2026-03-02", nil, []byte(`{"slots":[]}`)))
		got, err = cache.Get(ctx, 1, "2026-03-02", nil)
		require.NoError(t, err)
		assert.Equal(t, `{"slots":[]}`, string(got))
	})

	t.Run("WorkerKeysAreSeparate", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, 1, "2026-03-03", &worker, []byte("w5")))

		got, err := cache.Get(ctx, 1, "2026-03-03", nil)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = cache.Get(ctx, 1, "2026-03-03", &worker)
		require.NoError(t, err)
		assert.Equal(t, "w5", string(got))
	})

	t.Run("InvalidateDropsCompanyEntries", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, 2, "2026-03-02", nil, []byte("other")))
		require.NoError(t, cache.Invalidate(ctx, 1))

		got, err := cache.Get(ctx, 1, "2026-03-02", nil)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = cache.Get(ctx, 2, "2026-03-02", nil)
		require.NoError(t, err)
		assert.Equal(t, "other", string(got))
	})
}
