package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	client "keyhub/internal/database/client"
	"keyhub/internal/database/kv"
	"keyhub/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStoreTimeout = 2 * time.Second
	defaultStoreBackoff = 150 * time.Millisecond
)

// KVStoreRepository 以 Redis 實作 kv.Store：每次呼叫都有逾時，失敗只重試一次。
type KVStoreRepository struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	client  *redis.Client
	timeout time.Duration
	backoff time.Duration
}

func NewKVStoreRepository(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	client *client.RedisClient,
	config *config.Configuration,
) *KVStoreRepository {
	timeout := defaultStoreTimeout
	if config.Store.TimeoutMs > 0 {
		timeout = time.Duration(config.Store.TimeoutMs) * time.Millisecond
	}
	backoff := defaultStoreBackoff
	if config.Store.RetryBackoffMs > 0 {
		backoff = time.Duration(config.Store.RetryBackoffMs) * time.Millisecond
	}
	return &KVStoreRepository{
		trace:   trace,
		metric:  metric,
		client:  client.Client(),
		timeout: timeout,
		backoff: backoff,
	}
}

// Get 取得 key 的原始值；不存在回傳 kv.ErrNotFound
func (repository *KVStoreRepository) Get(contextValue context.Context, key string) (value []byte, returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(ignoreNotFound(returnedError)) }()

	traceMetadata := core.TraceKVMeta{Op: "get", Key: key}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		var getError error
		value, getError = repository.client.Get(callContext, key).Bytes()
		return getError
	})
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return value, returnedError
}

func (repository *KVStoreRepository) Set(contextValue context.Context, key string, value []byte) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceKVMeta{Op: "set", Key: key}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		return repository.client.Set(callContext, key, value, 0).Err()
	})
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return returnedError
}

func (repository *KVStoreRepository) Delete(contextValue context.Context, keys ...string) (returnedError error) {
	if len(keys) == 0 {
		return nil
	}
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceKVMeta{Op: "del", Key: keys[0], Members: len(keys)}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		return repository.client.Del(callContext, keys...).Err()
	})
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return returnedError
}

func (repository *KVStoreRepository) AddToSet(contextValue context.Context, setKey string, members ...string) (returnedError error) {
	if len(members) == 0 {
		return nil
	}
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceKVMeta{Op: "sadd", Key: setKey, Members: len(members)}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		return repository.client.SAdd(callContext, setKey, toInterfaces(members)...).Err()
	})
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return returnedError
}

func (repository *KVStoreRepository) SetMembers(contextValue context.Context, setKey string) (members []string, returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceKVMeta{Op: "smembers", Key: setKey}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		var membersError error
		members, membersError = repository.client.SMembers(callContext, setKey).Result()
		return membersError
	})
	traceMetadata.Members = len(members)
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return members, returnedError
}

func (repository *KVStoreRepository) RemoveFromSet(contextValue context.Context, setKey string, members ...string) (returnedError error) {
	if len(members) == 0 {
		return nil
	}
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceKVMeta{Op: "srem", Key: setKey, Members: len(members)}
	returnedError = repository.do(contextValue, &traceMetadata, func(callContext context.Context) error {
		return repository.client.SRem(callContext, setKey, toInterfaces(members)...).Err()
	})
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return returnedError
}

// do 執行單一 Redis 指令：逾時包覆、失敗後等待 backoff 重試一次，最後把錯誤歸類成 kv 的 sentinel。
func (repository *KVStoreRepository) do(
	contextValue context.Context,
	traceMetadata *core.TraceKVMeta,
	call func(callContext context.Context) error,
) error {
	var lastError error
	for attempt := 1; attempt <= 2; attempt++ {
		traceMetadata.Attempts = attempt

		callContext, cancel := context.WithTimeout(contextValue, repository.timeout)
		lastError = call(callContext)
		cancel()

		if lastError == nil {
			traceMetadata.Outcome = "ok"
			return nil
		}
		if errors.Is(lastError, redis.Nil) {
			traceMetadata.Outcome = "not_found"
			return kv.ErrNotFound
		}
		// 呼叫端已取消就不再重試
		if contextValue.Err() != nil || attempt == 2 {
			break
		}
		timer := time.NewTimer(repository.backoff)
		select {
		case <-contextValue.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	classified := classifyStoreError(traceMetadata.Op, lastError)
	if errors.Is(classified, kv.ErrTimeout) {
		traceMetadata.Outcome = "timeout"
	} else {
		traceMetadata.Outcome = "unavailable"
	}
	if repository.metric != nil && repository.metric.StorageErrorsTotal != nil {
		repository.metric.StorageErrorsTotal.WithLabelValues(traceMetadata.Op, traceMetadata.Outcome).Inc()
	}
	return classified
}

func classifyStoreError(op string, err error) error {
	var netError net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netError) && netError.Timeout()) {
		return fmt.Errorf("%w: %s: %v", kv.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", kv.ErrUnavailable, op, err)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	return err
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
