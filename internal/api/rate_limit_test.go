package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 1, 2, 15, 30, 0, 0, time.UTC)
	limiter := newLoginLimiter(client, 2)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.allow(ctx, "10.0.0.1", "a@b.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := limiter.allow(ctx, "10.0.0.1", "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)

	key := "rate:login:10.0.0.1:a@b.com:2026010215"
	assert.Equal(t, time.Hour, mr.TTL(key))

	ok, err = limiter.allow(ctx, "10.0.0.2", "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok, "another ip has its own counter")

	mr.FastForward(time.Hour)
	count, err := limiter.hit(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "an expired window starts over")
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	ok, err := newLoginLimiter(client, 1).allow(context.Background(), "10.0.0.1", "a@b.com")
	assert.Error(t, err)
	assert.True(t, ok)
}
