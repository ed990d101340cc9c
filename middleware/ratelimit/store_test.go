package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/devicestore"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeStore(t *testing.T) (*MemoryStore, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := NewMemoryStoreWithClock(clock)
	t.Cleanup(store.Close)
	return store, clock
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		store, _ := newFakeStore(t)

		count, resetTime, err := store.Get(ctx, "missing")

		require.NoError(t, err)
		assert.Zero(t, count)
		assert.True(t, resetTime.IsZero())
	})

	t.Run("increment within the window", func(t *testing.T) {
		store, clock := newFakeStore(t)

		count, resetTime, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, clock.Now().Add(time.Minute), resetTime)

		clock.Advance(30 * time.Second)
		count, again, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, resetTime, again, "later hits keep the window")

		count, _, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("window expiry starts over", func(t *testing.T) {
		store, clock := newFakeStore(t)
		_, _, _ = store.Increment(ctx, "k", time.Minute)
		_, _, _ = store.Increment(ctx, "k", time.Minute)

		clock.Advance(time.Minute)

		count, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, count)

		count, _, err = store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("reset", func(t *testing.T) {
		store, _ := newFakeStore(t)
		_, _, _ = store.Increment(ctx, "k", time.Minute)

		require.NoError(t, store.Reset(ctx, "k"))

		count, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		store, clock := newFakeStore(t)
		_, _, _ = store.Increment(ctx, "short", 10*time.Second)
		_, _, _ = store.Increment(ctx, "long", time.Hour)

		clock.BlockUntil(1)
		clock.Advance(time.Minute)

		assert.Eventually(t, func() bool {
			store.mu.Lock()
			defer store.mu.Unlock()
			_, short := store.data["short"]
			_, long := store.data["long"]
			return !short && long
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store, _ := newFakeStore(t)
		store.Close()
		store.Close()
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb := devicestore.NewRedisClient(config.RedisConfig{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb, "nehanotes_test:"+uuid.NewString()+":")

	count, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, resetTime, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.WithinDuration(t, time.Now().Add(time.Minute), resetTime, 2*time.Second)

	count, _, err = store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Reset(ctx, "k"))
	count, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)
}
