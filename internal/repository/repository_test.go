package repository

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedisStateRepository(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// a different key has its own window
	allowed, err = repo.CheckRateLimit(ctx, "client-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// window expiry resets the counter
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimitNilClient(t *testing.T) {
	repo := NewRedisStateRepository(nil)
	_, err := repo.CheckRateLimit(context.Background(), "x", 1, time.Minute)
	assert.Error(t, err)
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client-a", 2, 50*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client-a", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, err = repo.CheckRateLimit(ctx, "client-a", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}

type flakyStateRepo struct {
	fail    bool
	calls   int
	allowed bool
}

func (f *flakyStateRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.calls++
	if f.fail {
		return false, fmt.Errorf("connection refused")
	}
	return f.allowed, nil
}

func TestFailoverPrefersPrimary(t *testing.T) {
	logger := zerolog.New(io.Discard)
	primary := &flakyStateRepo{allowed: true}
	fallback := &flakyStateRepo{allowed: false}
	repo := NewFailoverStateRepository(primary, fallback, &logger)

	allowed, err := repo.CheckRateLimit(context.Background(), "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, fallback.calls)
}

func TestFailoverSwitchesToFallback(t *testing.T) {
	logger := zerolog.New(io.Discard)
	primary := &flakyStateRepo{fail: true}
	fallback := &flakyStateRepo{allowed: true}
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, fallback.calls)

	// primary marked down; subsequent calls skip it
	_, err = repo.CheckRateLimit(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, fallback.calls)
}
