package service

import (
	"context"
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

// CreateKeyInput 發 key 的輸入；Plan 僅 paid 使用，無法辨識時以 month 計
type CreateKeyInput struct {
	OwnerID         string
	Tier            core.KeyTier
	Plan            string
	ProviderLabel   string
	SourceIP        string
	CreationContext string
	Actor           string
}

// IndexRepairReport owner index 修復結果
type IndexRepairReport struct {
	OwnerID string `json:"ownerId"`
	Scanned int    `json:"scanned"`
	Kept    int    `json:"kept"`
	Removed int    `json:"removed"`
	Added   int    `json:"added"`
}

// KeyService key 生命週期：建立、續期、刪除（tombstone）、重設綁定、轉移擁有者，並維護 owner index。
// 同一 token 的所有寫入都在 KeyLocker 的同一把鎖內完成，鎖內重新讀取紀錄。
type KeyService struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	store   kv.Store
	keys    kv.Keys
	tokens  *TokenService
	policy  *ConfigProvider
	locker  *KeyLocker
	logRepo *fluentdRepo.LogRepository
	logger  *zap.Logger
	clock   func() time.Time
}

func NewKeyService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	store kv.Store,
	keys kv.Keys,
	tokens *TokenService,
	policy *ConfigProvider,
	locker *KeyLocker,
	logRepo *fluentdRepo.LogRepository,
	logger *zap.Logger,
) *KeyService {
	return &KeyService{
		trace:   trace,
		metric:  metric,
		store:   store,
		keys:    keys,
		tokens:  tokens,
		policy:  policy,
		locker:  locker,
		logRepo: logRepo,
		logger:  logger,
		clock:   time.Now,
	}
}

// Create 產生 token、計算到期時間、寫入紀錄後加入 owner index。
// index 寫入失敗時會刪除剛寫入的紀錄並回傳錯誤，呼叫端看到的是整體失敗。
func (s *KeyService) Create(ctx context.Context, input CreateKeyInput) (record *model.KeyRecord, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	traceMetadata := core.TraceKeyMeta{Op: "create", Tier: string(input.Tier), Plan: input.Plan, OwnerID: input.OwnerID}
	defer func() {
		traceMetadata.Outcome = outcomeOf(returnedError)
		if record != nil {
			traceMetadata.Token = record.Token
		}
		s.trace.ApplyTraceAttributes(span, traceMetadata)
		end(returnedError)
	}()

	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, cErr.ValidateErr("ownerId is required")
	}
	if input.Tier != core.TierFree && input.Tier != core.TierPaid {
		return nil, cErr.ValidateErr("tier must be free or paid")
	}

	token, err := s.tokens.Generate(ctx, input.Tier)
	if err != nil {
		return nil, err
	}

	now := s.clock().UnixMilli()
	policy := s.policy.Policy(ctx)
	record = &model.KeyRecord{
		Token:           token,
		OwnerID:         ownerID,
		Tier:            input.Tier,
		ProviderLabel:   input.ProviderLabel,
		CreatedAt:       now,
		Valid:           true,
		SourceIP:        input.SourceIP,
		CreationContext: input.CreationContext,
		UpdatedAt:       now,
	}
	if input.Tier == core.TierPaid {
		plan, ok := core.ParsePaidPlan(input.Plan)
		if !ok {
			plan = core.PlanMonth
		}
		record.Plan = plan
		if record.ProviderLabel == "" {
			record.ProviderLabel = plan.Label()
		}
	}
	expiresAt := now + policy.DurationFor(record.Tier, record.Plan).Milliseconds()
	record.ExpiresAt = &expiresAt

	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	if err := s.save(ctx, record); err != nil {
		return nil, storageError(err, "create key failed")
	}
	if err := s.store.AddToSet(ctx, s.keys.OwnerIndex(record.Tier, ownerID), token); err != nil {
		if delErr := s.store.Delete(ctx, s.keys.Token(record.Tier, token)); delErr != nil {
			// 紀錄不在任何 index 或 tombstone set 內，purge 與 RepairIndex 都找不到，需依 log 人工清除
			s.logger.Error("key record left without owner index entry",
				zap.String("token", token), zap.String("ownerId", ownerID), zap.Error(delErr))
		}
		return nil, storageError(err, "create key failed")
	}

	s.emit(ctx, core.KeyEventCreated, record, input.Actor, "")
	return record, nil
}

// 每個 owner 同時持有的 free key 上限（含已過期未刪除）
const maxFreeKeysPerOwner = 5

// ClaimFree 身分層代使用者領取 free key；同一 owner 的領取互斥，避免並發越過上限
func (s *KeyService) ClaimFree(ctx context.Context, ownerID, sourceIP, providerLabel string) (*model.KeyRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, cErr.ValidateErr("ownerId is required")
	}
	unlock := s.locker.Lock(ownerLockKey(core.TierFree, ownerID))
	defer unlock()

	held, err := s.ListByOwner(ctx, ownerID, core.TierFree)
	if err != nil {
		return nil, err
	}
	now := s.clock().UnixMilli()
	active := 0
	for _, record := range held {
		if record.Status(now) == core.KeyStatusActive {
			active++
		}
	}
	if active >= maxFreeKeysPerOwner {
		return nil, cErr.Conflict("free key slots are full, let some keys expire first")
	}
	return s.Create(ctx, CreateKeyInput{
		OwnerID:         ownerID,
		Tier:            core.TierFree,
		ProviderLabel:   providerLabel,
		SourceIP:        sourceIP,
		CreationContext: "self-service",
		Actor:           "owner:" + ownerID,
	})
}

// Get 取得紀錄（含已刪除）
func (s *KeyService) Get(ctx context.Context, token string) (*model.KeyRecord, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	record, err := s.lookup(ctx, token)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, cErr.NotFound("key not found")
	}
	if err != nil {
		return nil, storageError(err, "read key failed")
	}
	return record, nil
}

// Renew 以現在時間重新計算到期日，並清除 tombstone；requireOwnerID 規則同 Delete
func (s *KeyService) Renew(ctx context.Context, token, requireOwnerID, actor string) (record *model.KeyRecord, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	token = keytoken.Normalize(token)
	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	record, err := s.lookup(ctx, token)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, cErr.NotFound("key not found")
	}
	if err != nil {
		return nil, storageError(err, "read key failed")
	}
	if requireOwnerID != "" && record.OwnerID != requireOwnerID {
		return nil, cErr.OwnerMismatch("key belongs to another owner")
	}

	wasDeleted := record.Deleted
	now := s.clock().UnixMilli()
	expiresAt := now + s.policy.Policy(ctx).DurationFor(record.Tier, record.Plan).Milliseconds()
	record.ExpiresAt = &expiresAt
	record.Deleted = false
	record.DeletedAt = nil
	record.Valid = true
	record.UpdatedAt = now

	if err := s.save(ctx, record); err != nil {
		return nil, storageError(err, "renew key failed")
	}
	// 刪除時已移出 index，續期要放回去
	if err := s.store.AddToSet(ctx, s.keys.OwnerIndex(record.Tier, record.OwnerID), token); err != nil {
		// 留在 tombstone set，RepairIndex 會補回 index
		s.logger.Warn("renewed key not re-indexed", zap.String("token", token), zap.Error(err))
	} else if wasDeleted {
		s.removeFromIndex(ctx, s.keys.OwnerTombstones(record.Tier, record.OwnerID), token)
	}

	s.emit(ctx, core.KeyEventRenewed, record, actor, "")
	return record, nil
}

// Delete 標記 tombstone，登記到 owner 的 tombstone set 後移出 owner index。
// requireOwnerID 非空時只允許擁有者刪除；token 不存在或已刪除時 updated=false。
func (s *KeyService) Delete(ctx context.Context, token, requireOwnerID, actor string) (updated bool, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	token = keytoken.Normalize(token)
	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	record, err := s.lookup(ctx, token)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageError(err, "read key failed")
	}
	if requireOwnerID != "" && record.OwnerID != requireOwnerID {
		return false, cErr.OwnerMismatch("key belongs to another owner")
	}

	indexKey := s.keys.OwnerIndex(record.Tier, record.OwnerID)
	tombstones := s.keys.OwnerTombstones(record.Tier, record.OwnerID)
	if record.Deleted {
		if err := s.store.AddToSet(ctx, tombstones, token); err != nil {
			s.logger.Warn("tombstone set update failed", zap.String("token", token), zap.Error(err))
		}
		s.removeFromIndex(ctx, indexKey, token)
		return false, nil
	}

	// 先登記，purge 才找得到移出 index 的紀錄
	if err := s.store.AddToSet(ctx, tombstones, token); err != nil {
		return false, storageError(err, "delete key failed")
	}
	now := s.clock().UnixMilli()
	record.Deleted = true
	record.Valid = false
	record.DeletedAt = &now
	record.UpdatedAt = now
	if err := s.save(ctx, record); err != nil {
		return false, storageError(err, "delete key failed")
	}
	s.removeFromIndex(ctx, indexKey, token)

	s.emit(ctx, core.KeyEventDeleted, record, actor, "")
	return true, nil
}

// ResetBinding 清除綁定身分並累加重設次數；requireOwnerID 規則同 Delete
func (s *KeyService) ResetBinding(ctx context.Context, token, requireOwnerID, actor string) (record *model.KeyRecord, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	token = keytoken.Normalize(token)
	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	record, err := s.lookup(ctx, token)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, cErr.NotFound("key not found")
	}
	if err != nil {
		return nil, storageError(err, "read key failed")
	}
	if requireOwnerID != "" && record.OwnerID != requireOwnerID {
		return nil, cErr.OwnerMismatch("key belongs to another owner")
	}

	detail := ""
	if record.Binding != nil {
		detail = "previous device: " + record.Binding.DeviceID
	}
	now := s.clock().UnixMilli()
	record.Binding = nil
	record.BindingResetCount++
	record.LastBindingResetAt = &now
	record.UpdatedAt = now
	if err := s.save(ctx, record); err != nil {
		return nil, storageError(err, "reset binding failed")
	}

	s.emit(ctx, core.KeyEventBindingReset, record, actor, detail)
	return record, nil
}

// ReassignOwner 轉移 paid key 擁有者；新舊相同時不做任何事（changed=false）
func (s *KeyService) ReassignOwner(ctx context.Context, token, newOwnerID, actor string) (record *model.KeyRecord, changed bool, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	newOwnerID = strings.TrimSpace(newOwnerID)
	if newOwnerID == "" {
		return nil, false, cErr.ValidateErr("ownerId is required")
	}
	token = keytoken.Normalize(token)
	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	record, err := s.lookup(ctx, token)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, cErr.NotFound("key not found")
	}
	if err != nil {
		return nil, false, storageError(err, "read key failed")
	}
	if record.Tier != core.TierPaid {
		return nil, false, cErr.ValidateErr("only paid keys can change owner")
	}
	if record.OwnerID == newOwnerID {
		return record, false, nil
	}

	previous := record.OwnerID
	if record.Deleted {
		if err := s.store.AddToSet(ctx, s.keys.OwnerTombstones(record.Tier, newOwnerID), token); err != nil {
			return nil, false, storageError(err, "reassign owner failed")
		}
	}
	record.OwnerID = newOwnerID
	record.UpdatedAt = s.clock().UnixMilli()
	if err := s.save(ctx, record); err != nil {
		return nil, false, storageError(err, "reassign owner failed")
	}
	s.removeFromIndex(ctx, s.keys.OwnerIndex(record.Tier, previous), token)
	if record.Deleted {
		s.removeFromIndex(ctx, s.keys.OwnerTombstones(record.Tier, previous), token)
	} else if err := s.store.AddToSet(ctx, s.keys.OwnerIndex(record.Tier, newOwnerID), token); err != nil {
		s.logger.Warn("reassigned key not indexed under new owner",
			zap.String("token", token), zap.String("ownerId", newOwnerID), zap.Error(err))
	}

	s.emit(ctx, core.KeyEventOwnerChanged, record, actor, "from "+previous)
	return record, true, nil
}

// ListByOwner 依 owner index 列出未刪除的 key；順帶移除指向不存在、已刪除或已轉出紀錄的 index 成員。
// tier 為空時列出兩種 tier。排序：active 在前，再依到期時間由近到遠。
func (s *KeyService) ListByOwner(ctx context.Context, ownerID string, tier core.KeyTier) (records []*model.KeyRecord, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		s.trace.ApplyTraceAttributes(span, core.TraceKeyMeta{
			Op:      "list",
			Tier:    string(tier),
			OwnerID: ownerID,
			Count:   len(records),
			Outcome: outcomeOf(returnedError),
		})
		end(returnedError)
	}()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, cErr.ValidateErr("ownerId is required")
	}

	records = []*model.KeyRecord{}
	for _, t := range tiersOf(tier) {
		indexKey := s.keys.OwnerIndex(t, ownerID)
		members, err := s.store.SetMembers(ctx, indexKey)
		if err != nil {
			return nil, storageError(err, "read owner index failed")
		}
		var dangling []string
		for _, token := range members {
			record, err := s.readRecord(ctx, t, token)
			switch {
			case errors.Is(err, kv.ErrNotFound):
				dangling = append(dangling, token)
				continue
			case errors.Is(err, kv.ErrMalformed):
				s.logger.Warn("skipping malformed key record", zap.String("token", token), zap.Error(err))
				continue
			case err != nil:
				return nil, storageError(err, "read key failed")
			}
			if record.Deleted || record.OwnerID != ownerID {
				dangling = append(dangling, token)
				continue
			}
			records = append(records, record)
		}
		if len(dangling) > 0 {
			s.dropDangling(ctx, t, ownerID, dangling)
		}
	}

	now := s.clock().UnixMilli()
	sort.SliceStable(records, func(i, j int) bool {
		ai := records[i].Status(now) == core.KeyStatusActive
		aj := records[j].Status(now) == core.KeyStatusActive
		if ai != aj {
			return ai
		}
		return expiresBefore(records[i].ExpiresAt, records[j].ExpiresAt)
	})
	return records, nil
}

// RepairIndex 以 owner index、tombstone set 與執行紀錄引用到的 token 重建該 owner 的 index：
// 移除失效成員、補回屬於該 owner 但不在 index 內的有效 token。
func (s *KeyService) RepairIndex(ctx context.Context, ownerID string, referenced []string) (report *IndexRepairReport, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, cErr.ValidateErr("ownerId is required")
	}
	report = &IndexRepairReport{OwnerID: ownerID}

	indexed := map[string]bool{}
	candidates := []string{}
	seen := map[string]bool{}
	var extra []string
	for _, t := range []core.KeyTier{core.TierFree, core.TierPaid} {
		members, err := s.store.SetMembers(ctx, s.keys.OwnerIndex(t, ownerID))
		if err != nil {
			return nil, storageError(err, "read owner index failed")
		}
		for _, token := range members {
			indexed[string(t)+":"+token] = true
			if !seen[token] {
				seen[token] = true
				candidates = append(candidates, token)
			}
		}
		tombstoned, err := s.store.SetMembers(ctx, s.keys.OwnerTombstones(t, ownerID))
		if err != nil {
			return nil, storageError(err, "read tombstone set failed")
		}
		extra = append(extra, tombstoned...)
	}
	for _, token := range append(extra, referenced...) {
		token = keytoken.Normalize(token)
		if token != "" && !seen[token] {
			seen[token] = true
			candidates = append(candidates, token)
		}
	}

	for _, token := range candidates {
		report.Scanned++
		tier, ok := keytoken.TierOf(token)
		if !ok {
			continue
		}
		indexKey := s.keys.OwnerIndex(tier, ownerID)
		inIndex := indexed[string(tier)+":"+token]

		unlock := s.locker.Lock(tokenLockKey(token))
		record, err := s.readRecord(ctx, tier, token)
		if err != nil && !errors.Is(err, kv.ErrNotFound) && !errors.Is(err, kv.ErrMalformed) {
			unlock()
			return nil, storageError(err, "read key failed")
		}
		live := err == nil && !record.Deleted && record.OwnerID == ownerID
		switch {
		case live && inIndex:
			report.Kept++
		case live:
			if err := s.store.AddToSet(ctx, indexKey, token); err != nil {
				unlock()
				return nil, storageError(err, "repair owner index failed")
			}
			report.Added++
		case inIndex:
			if err := s.store.RemoveFromSet(ctx, indexKey, token); err != nil {
				unlock()
				return nil, storageError(err, "repair owner index failed")
			}
			report.Removed++
		}
		unlock()
	}

	s.logger.Info("owner index repaired",
		zap.String("ownerId", ownerID),
		zap.Int("scanned", report.Scanned),
		zap.Int("kept", report.Kept),
		zap.Int("removed", report.Removed),
		zap.Int("added", report.Added),
	)
	if s.metric.KeyEventsTotal != nil {
		s.metric.KeyEventsTotal.WithLabelValues("all", string(core.KeyEventIndexRepaired)).Inc()
	}
	return report, nil
}

// dropDangling 在 token 鎖內重讀，仍失效才移出 index
func (s *KeyService) dropDangling(ctx context.Context, tier core.KeyTier, ownerID string, tokens []string) {
	indexKey := s.keys.OwnerIndex(tier, ownerID)
	for _, token := range tokens {
		unlock := s.locker.Lock(tokenLockKey(token))
		record, err := s.readRecord(ctx, tier, token)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			s.removeFromIndex(ctx, indexKey, token)
		case err != nil:
			// 讀不到就保留，下次列出時再判斷
		case record.Deleted || record.OwnerID != ownerID:
			s.removeFromIndex(ctx, indexKey, token)
		}
		unlock()
	}
}

// lookup 依 token 前綴決定 tier 後讀取
func (s *KeyService) lookup(ctx context.Context, token string) (*model.KeyRecord, error) {
	token = keytoken.Normalize(token)
	tier, ok := keytoken.TierOf(token)
	if !ok {
		return nil, kv.ErrNotFound
	}
	return s.readRecord(ctx, tier, token)
}

func (s *KeyService) readRecord(ctx context.Context, tier core.KeyTier, token string) (*model.KeyRecord, error) {
	raw, err := s.store.Get(ctx, s.keys.Token(tier, token))
	if err != nil {
		return nil, err
	}
	return model.DecodeKeyRecord(raw)
}

func (s *KeyService) save(ctx context.Context, record *model.KeyRecord) error {
	raw, err := record.Encode()
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.keys.Token(record.Tier, record.Token), raw)
}

// removeFromIndex index 只做 best-effort，讀取端會略過失效成員
func (s *KeyService) removeFromIndex(ctx context.Context, indexKey string, tokens ...string) {
	if err := s.store.RemoveFromSet(ctx, indexKey, tokens...); err != nil {
		s.logger.Warn("owner index cleanup failed", zap.String("index", indexKey), zap.Error(err))
	}
}

func (s *KeyService) emit(ctx context.Context, event core.KeyEvent, record *model.KeyRecord, actor, detail string) {
	s.logger.Info("key "+string(event),
		zap.String("token", record.Token),
		zap.String("ownerId", record.OwnerID),
		zap.String("tier", string(record.Tier)),
		zap.String("actor", actor),
	)
	if s.metric.KeyEventsTotal != nil {
		s.metric.KeyEventsTotal.WithLabelValues(string(record.Tier), string(event)).Inc()
	}
	if err := s.logRepo.LogKeyEvent(ctx, fluentdModel.KeyEventLog{
		Event:     string(event),
		Token:     record.Token,
		Tier:      string(record.Tier),
		Plan:      string(record.Plan),
		OwnerID:   record.OwnerID,
		Actor:     actor,
		Detail:    detail,
		ExpiresAt: record.ExpiresAt,
	}); err != nil {
		s.logger.Warn("ship key event failed", zap.String("event", string(event)), zap.Error(err))
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func tiersOf(tier core.KeyTier) []core.KeyTier {
	if tier == core.TierFree || tier == core.TierPaid {
		return []core.KeyTier{tier}
	}
	return []core.KeyTier{core.TierFree, core.TierPaid}
}

// expiresBefore 沒有到期時間的排在最後
func expiresBefore(a, b *int64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
