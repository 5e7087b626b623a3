package client

import (
	"context"
	"keyhub/config"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient key 紀錄、owner 索引、限流共用同一個連線池
type RedisClient struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisClient(logger *zap.Logger, conf *config.Configuration) (*RedisClient, func(), error) {
	rdb := redis.NewClient(redisOptions(conf.Redis))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("failed to connect to Redis", zap.String("addr", rdb.Options().Addr), zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to Redis", zap.String("addr", rdb.Options().Addr), zap.Int("db", conf.Redis.DB))

	redisClient := &RedisClient{client: rdb, logger: logger}
	cleanup := func() {
		logger.Info("closing the Redis resources")
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close Redis client", zap.Error(err))
		}
	}
	return redisClient, cleanup, nil
}

func redisOptions(c config.Redis) *redis.Options {
	opts := &redis.Options{
		Addr:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
		// 重試只在 KV 邊界做一次
		MaxRetries: -1,
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = time.Duration(c.DialTimeout) * time.Millisecond
	}
	return opts
}

func (redisClient *RedisClient) Close() error {
	return redisClient.client.Close()
}

func (redisClient *RedisClient) Client() *redis.Client {
	return redisClient.client
}

// Ping 供 readiness 檢查
func (redisClient *RedisClient) Ping(ctx context.Context) error {
	return redisClient.client.Ping(ctx).Err()
}
