package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Allow(ctx, "1.2.3.4", 5)
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i)
	}

	res, err := l.Allow(ctx, "1.2.3.4", 5)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Greater(t, res.RetryAfter, time.Duration(0))

	// otra key no comparte ventana
	res, err = l.Allow(ctx, "5.6.7.8", 5)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	l := NewMemoryLimiter(time.Minute)
	ctx := context.Background()

	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k", 3)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "k", 3)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// pasada la ventana, la key vuelve a estar limpia
	l.now = func() time.Time { return base.Add(61 * time.Second) }
	res, err = l.Allow(ctx, "k", 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestMemoryLimiterRejectionDoesNotExtend(t *testing.T) {
	l := NewMemoryLimiter(time.Minute)
	ctx := context.Background()

	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < 2; i++ {
		_, err := l.Allow(ctx, "k", 2)
		require.NoError(t, err)
	}
	// rechazos repetidos no cuentan como hits
	for i := 0; i < 10; i++ {
		res, err := l.Allow(ctx, "k", 2)
		require.NoError(t, err)
		require.False(t, res.Allowed)
		require.EqualValues(t, 2, res.CurrentHits)
	}
}

func TestRedisLimiter(t *testing.T) {
	srv := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, "rl:", time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4", 3)
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i)
	}

	res, err := l.Allow(ctx, "1.2.3.4", 3)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// nueva ventana tras expirar la key
	srv.FastForward(2 * time.Minute)
	res, err = l.Allow(ctx, "1.2.3.4", 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
