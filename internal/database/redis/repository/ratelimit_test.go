package repository

import (
	"context"
	"testing"
	"time"

	"keyhub/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterConsume(t *testing.T) {
	server := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = redisClient.Close() })
	limiter := &RateLimiterRepository{trace: &telemetry.Trace{}, client: redisClient}
	ctx := context.Background()

	remaining, ttl, err := limiter.Consume(ctx, "validate", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, int64(60), ttl)

	remaining, _, err = limiter.Consume(ctx, "validate", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, ttl, err = limiter.Consume(ctx, "validate", "10.0.0.1", 60, 2)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Positive(t, ttl)

	// 其他 IP 與 scope 各自計算
	_, _, err = limiter.Consume(ctx, "validate", "10.0.0.2", 60, 2)
	assert.NoError(t, err)
	_, _, err = limiter.Consume(ctx, "exec", "10.0.0.1", 60, 2)
	assert.NoError(t, err)

	server.FastForward(61 * time.Second)
	remaining, _, err = limiter.Consume(ctx, "validate", "10.0.0.1", 60, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
