package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"keyhub/internal/database/kv"
	"keyhub/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKVStore(t *testing.T) (*KVStoreRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = redisClient.Close() })

	return &KVStoreRepository{
		trace:   &telemetry.Trace{},
		metric:  &telemetry.Metric{},
		client:  redisClient,
		timeout: 500 * time.Millisecond,
		backoff: 10 * time.Millisecond,
	}, server
}

func TestKVStoreGetSetDelete(t *testing.T) {
	store, _ := newTestKVStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "exhub:freekey:token:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", []byte(`{"x":1}`)))
	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(value))

	require.NoError(t, store.Delete(ctx, "a", "never-existed"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStoreSetMembership(t *testing.T) {
	store, server := newTestKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddToSet(ctx, "idx", "t1", "t2", "t1"))
	members, err := store.SetMembers(ctx, "idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, members)

	require.NoError(t, store.RemoveFromSet(ctx, "idx", "t1"))
	ok, err := server.SIsMember("idx", "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err = store.SetMembers(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestKVStoreUnavailable(t *testing.T) {
	store, server := newTestKVStore(t)
	server.Close()

	_, err := store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, kv.ErrUnavailable)
	assert.True(t, kv.IsInfrastructure(err))
}

func TestKVStoreServerError(t *testing.T) {
	store, server := newTestKVStore(t)
	server.SetError("LOADING dataset in memory")

	err := store.Set(context.Background(), "a", []byte("1"))
	assert.ErrorIs(t, err, kv.ErrUnavailable)
}

func TestClassifyStoreError(t *testing.T) {
	assert.ErrorIs(t, classifyStoreError("get", context.DeadlineExceeded), kv.ErrTimeout)
	assert.ErrorIs(t, classifyStoreError("get", errors.New("connection reset")), kv.ErrUnavailable)
}
