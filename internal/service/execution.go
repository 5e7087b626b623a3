package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"keyhub/internal/core"
	fluentdModel "keyhub/internal/database/fluentd/model"
	fluentdRepo "keyhub/internal/database/fluentd/repository"
	"keyhub/internal/database/kv"
	"keyhub/internal/database/redis/model"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"
	"keyhub/utils/keytoken"

	"go.uber.org/zap"
)

// ExecutionInput 一次執行回報
type ExecutionInput struct {
	ScriptID           string
	UserID             string
	DeviceID           string
	Username           string
	DisplayName        string
	ExecutorUse        string
	ClientExecuteCount *int64
	KeyToken           string
	KeyCreatedAt       string
	KeyExpiresAt       string
	IP                 string
	MapName            string
	PlaceID            string
	ServerID           string
	GameID             string
}

// ExecutionService 依 (scriptId, userId, deviceId) 彙總執行次數與最後狀態
type ExecutionService struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	store   kv.Store
	keys    kv.Keys
	locker  *KeyLocker
	logRepo *fluentdRepo.LogRepository
	logger  *zap.Logger
	clock   func() time.Time
}

func NewExecutionService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	store kv.Store,
	keys kv.Keys,
	locker *KeyLocker,
	logRepo *fluentdRepo.LogRepository,
	logger *zap.Logger,
) *ExecutionService {
	return &ExecutionService{
		trace:   trace,
		metric:  metric,
		store:   store,
		keys:    keys,
		locker:  locker,
		logRepo: logRepo,
		logger:  logger,
		clock:   time.Now,
	}
}

// RecordExecution 建立或更新彙總：次數加一、最後時間更新、非空欄位覆寫、位置歷史合併。
// 同一三元組的讀改寫在鎖內完成；寫入的一定是完整可解析的 JSON。
func (s *ExecutionService) RecordExecution(ctx context.Context, in ExecutionInput) (aggregate *model.ExecutionAggregate, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	in = normalizeExecution(in)
	if in.ScriptID == "" || in.UserID == "" || in.DeviceID == "" {
		return nil, cErr.MissingFields("scriptId, userId and hwid are required")
	}

	composite := model.ExecutionKey(in.ScriptID, in.UserID, in.DeviceID)
	entryKey := s.keys.ExecEntry(composite)
	snapshot := s.keySnapshot(ctx, in)

	unlock := s.locker.Lock(tripleLockKey(composite))
	defer unlock()

	now := s.clock().UnixMilli()
	created := false
	raw, err := s.store.Get(ctx, entryKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		created = true
	case err != nil:
		return nil, storageError(err, "read execution aggregate failed")
	default:
		aggregate, err = model.DecodeExecutionAggregate(raw)
		if err != nil {
			s.logger.Warn("replacing malformed execution aggregate", zap.String("key", composite), zap.Error(err))
			created = true
		}
	}

	if created {
		aggregate = &model.ExecutionAggregate{
			Key:            composite,
			ScriptID:       in.ScriptID,
			UserID:         in.UserID,
			DeviceID:       in.DeviceID,
			FirstExecuteAt: now,
			AllMapList:     []model.Location{},
		}
	}
	aggregate.TotalExecutes++
	aggregate.LastExecuteAt = now
	if in.IP != "" {
		aggregate.LastIP = in.IP
	}
	overwrite(&aggregate.Username, in.Username)
	overwrite(&aggregate.DisplayName, in.DisplayName)
	overwrite(&aggregate.ExecutorUse, in.ExecutorUse)
	overwrite(&aggregate.KeyToken, in.KeyToken)
	overwrite(&aggregate.MapName, in.MapName)
	overwrite(&aggregate.PlaceID, in.PlaceID)
	overwrite(&aggregate.ServerID, in.ServerID)
	overwrite(&aggregate.GameID, in.GameID)
	if in.ClientExecuteCount != nil {
		aggregate.ClientExecuteCount = in.ClientExecuteCount
	}
	if snapshot.createdAt != nil {
		aggregate.KeyCreatedAt = snapshot.createdAt
	}
	if snapshot.expiresAt != nil {
		aggregate.KeyExpiresAt = snapshot.expiresAt
	}
	overwrite(&aggregate.OwnerID, snapshot.ownerID)
	aggregate.MergeLocation(model.Location{
		MapName:  in.MapName,
		PlaceID:  in.PlaceID,
		GameID:   in.GameID,
		ServerID: in.ServerID,
	})

	encoded, err := aggregate.Encode()
	if err != nil {
		return nil, cErr.InternalServer("encode execution aggregate failed")
	}
	if err := s.store.Set(ctx, entryKey, encoded); err != nil {
		return nil, storageError(err, "write execution aggregate failed")
	}
	if err := s.store.AddToSet(ctx, s.keys.ExecIndex(), composite); err != nil {
		return nil, storageError(err, "index execution aggregate failed")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceExecutionMeta{
		ScriptID: in.ScriptID,
		UserID:   in.UserID,
		DeviceID: in.DeviceID,
		Total:    aggregate.TotalExecutes,
		Created:  created,
	})
	s.ship(ctx, aggregate, in, created)
	return aggregate, nil
}

type keySnapshot struct {
	ownerID   string
	createdAt *int64
	expiresAt *int64
}

// keySnapshot 盡力查出回報中 key 的建立/到期時間與擁有者；查不到就用客戶端帶的值
func (s *ExecutionService) keySnapshot(ctx context.Context, in ExecutionInput) keySnapshot {
	var snap keySnapshot
	if v, ok := model.ParseMillis(in.KeyCreatedAt); ok {
		snap.createdAt = &v
	}
	if v, ok := model.ParseMillis(in.KeyExpiresAt); ok {
		snap.expiresAt = &v
	}
	tier, ok := keytoken.TierOf(in.KeyToken)
	if !ok {
		return snap
	}
	raw, err := s.store.Get(ctx, s.keys.Token(tier, in.KeyToken))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Debug("key snapshot lookup failed", zap.String("token", in.KeyToken), zap.Error(err))
		}
		return snap
	}
	record, err := model.DecodeKeyRecord(raw)
	if err != nil {
		return snap
	}
	created := record.CreatedAt
	snap.createdAt = &created
	if record.ExpiresAt != nil {
		expires := *record.ExpiresAt
		snap.expiresAt = &expires
	}
	snap.ownerID = record.OwnerID
	return snap
}

func (s *ExecutionService) ship(ctx context.Context, aggregate *model.ExecutionAggregate, in ExecutionInput, created bool) {
	kind := "updated"
	if created {
		kind = "created"
	}
	if s.metric.ExecutionsTotal != nil {
		s.metric.ExecutionsTotal.WithLabelValues(kind).Inc()
	}
	if err := s.logRepo.LogExecution(ctx, fluentdModel.ExecutionLog{
		Key:           aggregate.Key,
		ScriptID:      aggregate.ScriptID,
		UserID:        aggregate.UserID,
		DeviceID:      aggregate.DeviceID,
		KeyToken:      in.KeyToken,
		MapName:       in.MapName,
		PlaceID:       in.PlaceID,
		ServerID:      in.ServerID,
		IPHash:        hashIP(in.IP),
		TotalExecutes: aggregate.TotalExecutes,
		Created:       created,
	}); err != nil {
		s.logger.Warn("ship execution log failed", zap.Error(err))
	}
}

// LoadAll 依 exec index 讀取所有彙總，依複合鍵排序；順帶移除指向不存在紀錄的 index 成員
func (s *ExecutionService) LoadAll(ctx context.Context) (aggregates []*model.ExecutionAggregate, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	members, err := s.store.SetMembers(ctx, s.keys.ExecIndex())
	if err != nil {
		return nil, storageError(err, "read execution index failed")
	}
	sort.Strings(members)

	aggregates = make([]*model.ExecutionAggregate, 0, len(members))
	var dangling []string
	for _, composite := range members {
		raw, err := s.store.Get(ctx, s.keys.ExecEntry(composite))
		if errors.Is(err, kv.ErrNotFound) {
			dangling = append(dangling, composite)
			continue
		}
		if err != nil {
			return nil, storageError(err, "read execution aggregate failed")
		}
		aggregate, err := model.DecodeExecutionAggregate(raw)
		if err != nil {
			s.logger.Warn("skipping malformed execution aggregate", zap.String("key", composite), zap.Error(err))
			continue
		}
		aggregates = append(aggregates, aggregate)
	}
	if len(dangling) > 0 {
		if err := s.store.RemoveFromSet(ctx, s.keys.ExecIndex(), dangling...); err != nil {
			s.logger.Warn("execution index cleanup failed", zap.Error(err))
		}
	}
	return aggregates, nil
}

// ListByToken 回傳引用此 key 的所有彙總，最近執行的在前
func (s *ExecutionService) ListByToken(ctx context.Context, token string) ([]*model.ExecutionAggregate, error) {
	token = keytoken.Normalize(token)
	if token == "" {
		return nil, cErr.ValidateErr("token is required")
	}
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := []*model.ExecutionAggregate{}
	for _, aggregate := range all {
		if aggregate.KeyToken == token {
			matched = append(matched, aggregate)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastExecuteAt > matched[j].LastExecuteAt
	})
	return matched, nil
}

// ReferencedTokens 該 owner 的執行紀錄曾使用過的 key token
func (s *ExecutionService) ReferencedTokens(ctx context.Context, ownerID string) ([]string, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	tokens := []string{}
	for _, aggregate := range all {
		if aggregate.OwnerID != ownerID || aggregate.KeyToken == "" || seen[aggregate.KeyToken] {
			continue
		}
		seen[aggregate.KeyToken] = true
		tokens = append(tokens, aggregate.KeyToken)
	}
	return tokens, nil
}

// RemoveWhere 硬刪除符合條件的彙總並移出 index，回傳刪除筆數
func (s *ExecutionService) RemoveWhere(ctx context.Context, match func(*model.ExecutionAggregate) bool) (removed int, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	all, err := s.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, aggregate := range all {
		if !match(aggregate) {
			continue
		}
		if err := s.remove(ctx, aggregate.Key, match); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// remove 在鎖內重讀，確認仍符合條件才刪除
func (s *ExecutionService) remove(ctx context.Context, composite string, match func(*model.ExecutionAggregate) bool) error {
	unlock := s.locker.Lock(tripleLockKey(composite))
	defer unlock()

	entryKey := s.keys.ExecEntry(composite)
	raw, err := s.store.Get(ctx, entryKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return storageError(err, "read execution aggregate failed")
	default:
		if current, err := model.DecodeExecutionAggregate(raw); err == nil && !match(current) {
			return nil
		}
		if err := s.store.Delete(ctx, entryKey); err != nil {
			return storageError(err, "delete execution aggregate failed")
		}
	}
	if err := s.store.RemoveFromSet(ctx, s.keys.ExecIndex(), composite); err != nil {
		return storageError(err, "update execution index failed")
	}
	return nil
}

// Prune 刪除最後執行時間早於 olderThan 之前的彙總
func (s *ExecutionService) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, cErr.ValidateErr("retention window must be positive")
	}
	cutoff := s.clock().Add(-olderThan).UnixMilli()
	removed, err := s.RemoveWhere(ctx, func(aggregate *model.ExecutionAggregate) bool {
		return aggregate.LastExecuteAt < cutoff
	})
	if err != nil {
		return removed, err
	}
	s.logger.Info("execution aggregates pruned", zap.Int("removed", removed), zap.Int64("cutoff", cutoff))
	return removed, nil
}

func normalizeExecution(in ExecutionInput) ExecutionInput {
	trim := strings.TrimSpace
	in.ScriptID = trim(in.ScriptID)
	in.UserID = trim(in.UserID)
	in.DeviceID = trim(in.DeviceID)
	in.Username = trim(in.Username)
	in.DisplayName = trim(in.DisplayName)
	in.ExecutorUse = trim(in.ExecutorUse)
	in.KeyToken = keytoken.Normalize(in.KeyToken)
	in.MapName = trim(in.MapName)
	in.PlaceID = trim(in.PlaceID)
	in.ServerID = trim(in.ServerID)
	in.GameID = trim(in.GameID)
	return in
}

// overwrite 只用非空值覆寫
func overwrite(field *string, value string) {
	if value != "" {
		*field = value
	}
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
