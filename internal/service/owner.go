package service

import (
	"context"
	"errors"
	"strings"

	"keyhub/internal/core"
	fluentdModel "keyhub/internal/database/fluentd/model"
	fluentdRepo "keyhub/internal/database/fluentd/repository"
	"keyhub/internal/database/kv"
	mongoModel "keyhub/internal/database/mongodb/model"
	"keyhub/internal/database/redis/model"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"
	"keyhub/utils/keytoken"

	"go.uber.org/zap"
)

// PurgeAuditStore 清除稽核的落地位置（MongoDB）
type PurgeAuditStore interface {
	Insert(ctx context.Context, audit *mongoModel.PurgeAudit) error
	ListByOwner(ctx context.Context, ownerID string) ([]*mongoModel.PurgeAudit, error)
}

// PurgeReport owner 清除結果；重跑時數量為 0
type PurgeReport struct {
	OwnerID           string   `json:"ownerId"`
	FreeKeysRemoved   int      `json:"freeKeysRemoved"`
	PaidKeysRemoved   int      `json:"paidKeysRemoved"`
	ExecutionsRemoved int      `json:"executionsRemoved"`
	Tokens            []string `json:"tokens"`
}

// OwnerService owner 層級的維運操作：清除全部資料、修復 index、查詢清除紀錄。
type OwnerService struct {
	trace      *telemetry.Trace
	store      kv.Store
	keys       kv.Keys
	locker     *KeyLocker
	keySvc     *KeyService
	executions *ExecutionService
	audits     PurgeAuditStore
	logRepo    *fluentdRepo.LogRepository
	logger     *zap.Logger
}

func NewOwnerService(
	trace *telemetry.Trace,
	store kv.Store,
	keys kv.Keys,
	locker *KeyLocker,
	keySvc *KeyService,
	executions *ExecutionService,
	audits PurgeAuditStore,
	logRepo *fluentdRepo.LogRepository,
	logger *zap.Logger,
) *OwnerService {
	return &OwnerService{
		trace:      trace,
		store:      store,
		keys:       keys,
		locker:     locker,
		keySvc:     keySvc,
		executions: executions,
		audits:     audits,
		logRepo:    logRepo,
		logger:     logger,
	}
}

// Purge 硬刪除 owner 的所有 key 紀錄（含 tombstone）、owner index 與 tombstone set，以及屬於該 owner 或引用到被刪 key 的執行彙總。
// 這是唯一不走 tombstone 的刪除路徑，可重複執行。
func (s *OwnerService) Purge(ctx context.Context, ownerID, actor string) (report *PurgeReport, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		meta := core.TraceKeyMeta{Op: "purge", OwnerID: ownerID, Outcome: outcomeOf(returnedError)}
		if report != nil {
			meta.Count = len(report.Tokens)
		}
		s.trace.ApplyTraceAttributes(span, meta)
		end(returnedError)
	}()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, cErr.ValidateErr("ownerId is required")
	}
	report = &PurgeReport{OwnerID: ownerID, Tokens: []string{}}

	candidates, err := s.candidateTokens(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	purged := map[string]bool{}
	for _, token := range candidates {
		removed, err := s.hardDelete(ctx, ownerID, token)
		if err != nil {
			return nil, err
		}
		if !removed {
			continue
		}
		purged[token] = true
		report.Tokens = append(report.Tokens, token)
		if tier, _ := keytoken.TierOf(token); tier == core.TierPaid {
			report.PaidKeysRemoved++
		} else {
			report.FreeKeysRemoved++
		}
	}

	if err := s.store.Delete(ctx,
		s.keys.OwnerIndex(core.TierFree, ownerID),
		s.keys.OwnerIndex(core.TierPaid, ownerID),
		s.keys.OwnerTombstones(core.TierFree, ownerID),
		s.keys.OwnerTombstones(core.TierPaid, ownerID),
	); err != nil {
		return nil, storageError(err, "delete owner index failed")
	}

	report.ExecutionsRemoved, err = s.executions.RemoveWhere(ctx, func(aggregate *model.ExecutionAggregate) bool {
		return aggregate.OwnerID == ownerID || purged[aggregate.KeyToken]
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("owner data purged",
		zap.String("ownerId", ownerID),
		zap.String("actor", actor),
		zap.Int("freeKeys", report.FreeKeysRemoved),
		zap.Int("paidKeys", report.PaidKeysRemoved),
		zap.Int("executions", report.ExecutionsRemoved),
	)
	if err := s.audits.Insert(ctx, &mongoModel.PurgeAudit{
		OwnerID:           ownerID,
		Actor:             actor,
		FreeKeysRemoved:   report.FreeKeysRemoved,
		PaidKeysRemoved:   report.PaidKeysRemoved,
		ExecutionsRemoved: report.ExecutionsRemoved,
		Tokens:            report.Tokens,
	}); err != nil {
		// 資料已刪除，稽核失敗不回滾
		s.logger.Error("write purge audit failed", zap.String("ownerId", ownerID), zap.Error(err))
	}
	if err := s.logRepo.LogKeyEvent(ctx, fluentdModel.KeyEventLog{
		Event:   string(core.KeyEventPurged),
		OwnerID: ownerID,
		Actor:   actor,
		Detail:  strings.Join(report.Tokens, ","),
	}); err != nil {
		s.logger.Warn("ship key event failed", zap.String("event", string(core.KeyEventPurged)), zap.Error(err))
	}
	return report, nil
}

// candidateTokens owner index 與 tombstone set 的成員，加上執行紀錄內以此 owner 身分使用過的 token
func (s *OwnerService) candidateTokens(ctx context.Context, ownerID string) ([]string, error) {
	seen := map[string]bool{}
	tokens := []string{}
	add := func(token string) {
		token = keytoken.Normalize(token)
		if token != "" && !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}
	for _, tier := range []core.KeyTier{core.TierFree, core.TierPaid} {
		for _, setKey := range []string{s.keys.OwnerIndex(tier, ownerID), s.keys.OwnerTombstones(tier, ownerID)} {
			members, err := s.store.SetMembers(ctx, setKey)
			if err != nil {
				return nil, storageError(err, "read owner index failed")
			}
			for _, token := range members {
				add(token)
			}
		}
	}
	referenced, err := s.executions.ReferencedTokens(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, token := range referenced {
		add(token)
	}
	return tokens, nil
}

// hardDelete 只刪除仍屬於該 owner 的紀錄；已轉給別人的 paid key 保留。損毀的紀錄一併刪除。
func (s *OwnerService) hardDelete(ctx context.Context, ownerID, token string) (bool, error) {
	tier, ok := keytoken.TierOf(token)
	if !ok {
		return false, nil
	}
	unlock := s.locker.Lock(tokenLockKey(token))
	defer unlock()

	recordKey := s.keys.Token(tier, token)
	raw, err := s.store.Get(ctx, recordKey)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageError(err, "read key failed")
	}
	if record, err := model.DecodeKeyRecord(raw); err == nil && record.OwnerID != ownerID {
		return false, nil
	}
	if err := s.store.Delete(ctx, recordKey); err != nil {
		return false, storageError(err, "delete key failed")
	}
	return true, nil
}

// RepairIndex 以 index 現況與執行紀錄引用的 token 重建 owner index
func (s *OwnerService) RepairIndex(ctx context.Context, ownerID string) (*IndexRepairReport, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	referenced, err := s.executions.ReferencedTokens(ctx, strings.TrimSpace(ownerID))
	if err != nil {
		return nil, err
	}
	return s.keySvc.RepairIndex(ctx, ownerID, referenced)
}

// PurgeHistory 查詢 owner 的清除稽核
func (s *OwnerService) PurgeHistory(ctx context.Context, ownerID string) ([]*mongoModel.PurgeAudit, error) {
	ownerID = strings.TrimSpace(ownerID)
	audits, err := s.audits.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list purge audits failed", zap.String("ownerId", ownerID), zap.Error(err))
		return nil, cErr.DatabaseError("list purge audits failed")
	}
	return audits, nil
}
