package client

import (
	"testing"
	"time"

	"keyhub/config"

	"github.com/stretchr/testify/assert"
)

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.Redis{Host: "10.0.0.5", Port: 6380, DB: 2, PoolSize: 32, DialTimeout: 1500})
	assert.Equal(t, "10.0.0.5:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 32, opts.PoolSize)
	assert.Equal(t, 1500*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, -1, opts.MaxRetries)

	opts = redisOptions(config.Redis{Host: "::1", Port: 6379})
	assert.Equal(t, "[::1]:6379", opts.Addr)
	assert.Zero(t, opts.DialTimeout)
}
