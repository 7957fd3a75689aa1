package redis //nolint:testpackage // Need access to the unexported clock and key layout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewLimiter(client, limit, time.Minute)
	require.NoError(t, err)

	return limiter, mr
}

func TestNewLimiter_InvalidArguments(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	_, err := NewLimiter(nil, 1, time.Minute)
	require.Error(t, err)

	_, err = NewLimiter(client, 0, time.Minute)
	require.Error(t, err)

	_, err = NewLimiter(client, 1, 0)
	require.Error(t, err)
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, 2)

	fixed := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, allowed)

	// Other clients have their own budget.
	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	require.True(t, allowed)

	key := limiter.windowKey("10.0.0.1")
	require.Equal(t, time.Minute, mr.TTL(key))

	count, err := mr.Get(key)
	require.NoError(t, err)
	require.Equal(t, "3", count)
}

func TestLimiter_Allow_NewWindowResetsBudget(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, 1)

	current := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.False(t, allowed)

	current = current.Add(time.Minute)

	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestLimiter_Allow_RedisUnavailable(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "client")

	require.Error(t, err)
	require.False(t, allowed)
}
