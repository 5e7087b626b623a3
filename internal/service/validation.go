package service

import (
	"context"
	"errors"
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

// Identity 呼叫端自報的外部身分（遊戲帳號與裝置）
type Identity struct {
	UserID      string
	Username    string
	DisplayName string
	DeviceID    string
}

func (i Identity) normalized() Identity {
	return Identity{
		UserID:      strings.TrimSpace(i.UserID),
		Username:    strings.TrimSpace(i.Username),
		DisplayName: strings.TrimSpace(i.DisplayName),
		DeviceID:    strings.TrimSpace(i.DeviceID),
	}
}

// Present 只有 user id 或 username 才算提供身分
func (i Identity) Present() bool {
	return i.UserID != "" || i.Username != ""
}

type ValidationResult struct {
	Token     string               `json:"token"`
	Valid     bool                 `json:"valid"`
	Deleted   bool                 `json:"deleted"`
	Expired   bool                 `json:"expired"`
	Reason    core.ReasonCode      `json:"reasonCode"`
	Message   string               `json:"message"`
	Tier      core.KeyTier         `json:"tier,omitempty"`
	Plan      core.PaidPlan        `json:"plan,omitempty"`
	ExpiresAt *int64               `json:"expiresAt"`
	Binding   *model.BoundIdentity `json:"binding"`
}

var reasonMessages = map[core.ReasonCode]string{
	core.ReasonOK:           "key is valid",
	core.ReasonNotFound:     "key not found",
	core.ReasonDeleted:      "key has been deleted",
	core.ReasonExpired:      "key has expired",
	core.ReasonInvalid:      "key has been invalidated",
	core.ReasonBoundToOther: "key is locked to another account",
}

// ValidationService 判斷 key 是否可用，並在第一次帶身分驗證時把 key 綁定到該身分
type ValidationService struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	store   kv.Store
	keys    kv.Keys
	locker  *KeyLocker
	logRepo *fluentdRepo.LogRepository
	logger  *zap.Logger
	clock   func() time.Time
}

func NewValidationService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	store kv.Store,
	keys kv.Keys,
	locker *KeyLocker,
	logRepo *fluentdRepo.LogRepository,
	logger *zap.Logger,
) *ValidationService {
	return &ValidationService{
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

// Validate 每次都由紀錄欄位重新計算結果：
//  1. 查無紀錄 -> NOT_FOUND
//  2. 刪除、失效、過期依序決定 reason
//  3. 帶身分且紀錄已綁定其他人 -> BOUND_TO_OTHER（刪除仍優先）
//  4. 紀錄有效且帶身分 -> 首次綁定或補齊欄位
//
// KV 無法回應時回傳 503 錯誤，不會回報 valid=false。
func (s *ValidationService) Validate(ctx context.Context, token string, identity Identity) (result *ValidationResult, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	token = keytoken.Normalize(token)
	if token == "" {
		return nil, cErr.ValidateErr("token is required")
	}
	identity = identity.normalized()

	traceMetadata := core.TraceValidationMeta{Token: token, HasIdentity: identity.Present()}
	defer func() {
		if result != nil {
			traceMetadata.Valid = result.Valid
			traceMetadata.Reason = string(result.Reason)
			traceMetadata.Tier = string(result.Tier)
		}
		s.trace.ApplyTraceAttributes(span, traceMetadata)
	}()

	tier, ok := keytoken.TierOf(token)
	if !ok {
		return s.finish(token, "", core.ReasonNotFound, nil), nil
	}

	// 只有可能寫入綁定時才需要序列化
	if identity.Present() {
		unlock := s.locker.Lock(tokenLockKey(token))
		defer unlock()
	}

	raw, err := s.store.Get(ctx, s.keys.Token(tier, token))
	if errors.Is(err, kv.ErrNotFound) {
		return s.finish(token, tier, core.ReasonNotFound, nil), nil
	}
	if err != nil {
		s.logger.Warn("cannot confirm key validity", zap.String("token", token), zap.Error(err))
		return nil, storageError(err, "cannot confirm key validity right now")
	}
	record, err := model.DecodeKeyRecord(raw)
	if err != nil {
		s.logger.Error("stored key record is malformed", zap.String("token", token), zap.Error(err))
		return nil, storageError(err, "cannot confirm key validity right now")
	}

	now := s.clock().UnixMilli()
	reason := core.ReasonOK
	switch record.Status(now) {
	case core.KeyStatusDeleted:
		reason = core.ReasonDeleted
	case core.KeyStatusInvalid:
		reason = core.ReasonInvalid
	case core.KeyStatusExpired:
		reason = core.ReasonExpired
	}

	if identity.Present() && reason != core.ReasonDeleted {
		next, changed, conflict := applyIdentity(record.Binding, identity, now)
		switch {
		case conflict:
			reason = core.ReasonBoundToOther
		case changed && reason == core.ReasonOK:
			firstClaim := record.Binding.IsEmpty()
			record.Binding = next
			record.UpdatedAt = now
			encoded, err := record.Encode()
			if err == nil {
				err = s.store.Set(ctx, s.keys.Token(tier, token), encoded)
			}
			if err != nil {
				return nil, storageError(err, "cannot record key binding right now")
			}
			traceMetadata.BindingWrite = true
			if firstClaim {
				s.logBound(ctx, record)
			}
		}
	}

	return s.finish(token, tier, reason, record), nil
}

func (s *ValidationService) finish(token string, tier core.KeyTier, reason core.ReasonCode, record *model.KeyRecord) *ValidationResult {
	result := &ValidationResult{
		Token:   token,
		Valid:   reason == core.ReasonOK,
		Reason:  reason,
		Message: reasonMessages[reason],
		Tier:    tier,
	}
	if record != nil {
		result.Deleted = record.Deleted
		result.Expired = record.IsExpired(s.clock().UnixMilli())
		result.Plan = record.Plan
		result.ExpiresAt = record.ExpiresAt
		if record.Binding != nil {
			snapshot := *record.Binding
			result.Binding = &snapshot
		}
	}
	if s.metric.ValidationsTotal != nil {
		s.metric.ValidationsTotal.WithLabelValues(string(tier), string(reason)).Inc()
	}
	return result
}

func (s *ValidationService) logBound(ctx context.Context, record *model.KeyRecord) {
	s.logger.Info("key bound",
		zap.String("token", record.Token),
		zap.String("ownerId", record.OwnerID),
		zap.String("tier", string(record.Tier)),
	)
	if s.metric.KeyEventsTotal != nil {
		s.metric.KeyEventsTotal.WithLabelValues(string(record.Tier), string(core.KeyEventBound)).Inc()
	}
	if err := s.logRepo.LogKeyEvent(ctx, fluentdModel.KeyEventLog{
		Event:   string(core.KeyEventBound),
		Token:   record.Token,
		Tier:    string(record.Tier),
		Plan:    string(record.Plan),
		OwnerID: record.OwnerID,
		Detail:  "user " + record.Binding.ExternalUserID,
	}); err != nil {
		s.logger.Warn("ship key event failed", zap.Error(err))
	}
}

// applyIdentity 計算綁定後的狀態。
// user id 是權威：同一 user id 帶新 username 會更新 username；
// 只有 username 的綁定不會被帶 user id 的呼叫改綁（username 不同即衝突）。
// username 比對不分大小寫；已有的欄位不覆寫。
func applyIdentity(current *model.BoundIdentity, id Identity, now int64) (next *model.BoundIdentity, changed bool, conflict bool) {
	if current.IsEmpty() {
		return &model.BoundIdentity{
			ExternalUserID:      id.UserID,
			ExternalUsername:    id.Username,
			ExternalDisplayName: id.DisplayName,
			DeviceID:            id.DeviceID,
			BoundAt:             now,
		}, true, false
	}

	existingID := current.ExternalUserID
	existingName := current.ExternalUsername
	if existingID != "" && id.UserID != "" && existingID != id.UserID {
		return current, false, true
	}

	updated := *current
	if existingName != "" && id.Username != "" && !strings.EqualFold(existingName, id.Username) {
		if existingID == "" || id.UserID != existingID {
			return current, false, true
		}
		// TODO(product): confirm that a bound user id may rename its username while a username-only binding stays locked
		updated.ExternalUsername = id.Username
		if id.DisplayName != "" {
			updated.ExternalDisplayName = id.DisplayName
		}
	}

	if updated.ExternalUserID == "" {
		updated.ExternalUserID = id.UserID
	}
	if updated.ExternalUsername == "" {
		updated.ExternalUsername = id.Username
	}
	if updated.ExternalDisplayName == "" {
		updated.ExternalDisplayName = id.DisplayName
	}
	if updated.DeviceID == "" {
		updated.DeviceID = id.DeviceID
	}
	if updated.BoundAt == 0 {
		updated.BoundAt = now
	}
	return &updated, updated != *current, false
}
