package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	client "keyhub/internal/database/client"
	fluentdRepo "keyhub/internal/database/fluentd/repository"
	"keyhub/internal/database/kv"
	"keyhub/internal/database/redis/model"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// faultyStore 只讓指定操作失敗，其餘轉給 MemoryStore
type faultyStore struct {
	*kv.MemoryStore
	failAdd    error
	failSet    error
	failDelete error
}

func (f *faultyStore) AddToSet(ctx context.Context, setKey string, members ...string) error {
	if f.failAdd != nil {
		return f.failAdd
	}
	return f.MemoryStore.AddToSet(ctx, setKey, members...)
}

func (f *faultyStore) Delete(ctx context.Context, keys ...string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	return f.MemoryStore.Delete(ctx, keys...)
}

func (f *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet != nil {
		return f.failSet
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type testEnv struct {
	now        time.Time
	store      *faultyStore
	keys       kv.Keys
	locker     *KeyLocker
	policy     *ConfigProvider
	tokens     *TokenService
	keySvc     *KeyService
	validation *ValidationService
	executions *ExecutionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	trace := &telemetry.Trace{}
	metric := &telemetry.Metric{}
	logger := zap.NewNop()
	conf := &config.Configuration{}
	logRepo := fluentdRepo.NewLogRepository(conf, &client.NoopClient{})

	env := &testEnv{
		now:    testEpoch,
		store:  &faultyStore{MemoryStore: kv.NewMemoryStore()},
		keys:   kv.NewKeys(""),
		locker: NewKeyLocker(),
	}
	clock := func() time.Time { return env.now }

	env.policy = NewConfigProvider(trace, env.store, env.keys, conf, logger)
	env.policy.clock = clock
	env.tokens = NewTokenService(trace, env.store, env.keys)
	env.keySvc = NewKeyService(trace, metric, env.store, env.keys, env.tokens, env.policy, env.locker, logRepo, logger)
	env.keySvc.clock = clock
	env.validation = NewValidationService(trace, metric, env.store, env.keys, env.locker, logRepo, logger)
	env.validation.clock = clock
	env.executions = NewExecutionService(trace, metric, env.store, env.keys, env.locker, logRepo, logger)
	env.executions.clock = clock
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) createKey(t *testing.T, ownerID string, tier core.KeyTier, plan string) *model.KeyRecord {
	t.Helper()
	record, err := e.keySvc.Create(context.Background(), CreateKeyInput{
		OwnerID: ownerID,
		Tier:    tier,
		Plan:    plan,
		Actor:   "test",
	})
	require.NoError(t, err)
	return record
}

func (e *testEnv) indexMembers(t *testing.T, record *model.KeyRecord, ownerID string) []string {
	t.Helper()
	members, err := e.store.SetMembers(context.Background(), e.keys.OwnerIndex(record.Tier, ownerID))
	require.NoError(t, err)
	return members
}

func (e *testEnv) stored(t *testing.T, record *model.KeyRecord) *model.KeyRecord {
	t.Helper()
	raw, err := e.store.Get(context.Background(), e.keys.Token(record.Tier, record.Token))
	require.NoError(t, err)
	got, err := model.DecodeKeyRecord(raw)
	require.NoError(t, err)
	return got
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var appErr *cErr.Error
	require.True(t, errors.As(err, &appErr), "expected *error.Error, got %T", err)
	require.Equal(t, status, appErr.HttpCode())
}
