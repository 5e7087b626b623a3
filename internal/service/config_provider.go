package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/kv"
	"keyhub/internal/database/redis/model"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"

	"go.uber.org/zap"
)

const (
	defaultFreeTTLHours     = 3
	maxFreeTTLHours         = 72
	minFreeTTLHours         = 1
	defaultPaidMonthDays    = 30
	defaultPaidLifetimeDays = 365
	minPaidDays             = 1
	maxPaidDays             = 3650
	defaultPolicyCacheTTL   = 60 * time.Second
)

const day = 24 * time.Hour

// KeyPolicy 目前生效的期限設定
type KeyPolicy struct {
	FreeTTLHours     float64   `json:"freeTtlHours"`
	PaidMonthDays    float64   `json:"paidMonthDays"`
	Paid3MonthDays   float64   `json:"paid3MonthDays"`
	Paid6MonthDays   float64   `json:"paid6MonthDays"`
	PaidLifetimeDays float64   `json:"paidLifetimeDays"`
	LoadedAt         time.Time `json:"loadedAt"`
	// store：來自 KV 設定文件；defaults：KV 無文件或讀取失敗
	Source string `json:"source"`
}

func (p *KeyPolicy) FreeTTL() time.Duration {
	return time.Duration(p.FreeTTLHours * float64(time.Hour))
}

func (p *KeyPolicy) PlanDuration(plan core.PaidPlan) time.Duration {
	days := p.PaidMonthDays
	switch plan {
	case core.PlanThreeMonth:
		days = p.Paid3MonthDays
	case core.PlanSixMonth:
		days = p.Paid6MonthDays
	case core.PlanLifetime:
		days = p.PaidLifetimeDays
	}
	return time.Duration(days * float64(day))
}

// DurationFor tier 與 plan 對應的有效期
func (p *KeyPolicy) DurationFor(tier core.KeyTier, plan core.PaidPlan) time.Duration {
	if tier == core.TierPaid {
		return p.PlanDuration(plan)
	}
	return p.FreeTTL()
}

// KeyPolicyUpdate 後台更新設定文件；nil 欄位不變
type KeyPolicyUpdate struct {
	FreeTTLHours     *float64
	PaidMonthDays    *float64
	Paid3MonthDays   *float64
	Paid6MonthDays   *float64
	PaidLifetimeDays *float64
}

// ConfigProvider 提供 key 期限設定；快取至多 staleness 時間，之後下一次讀取會重新載入。
type ConfigProvider struct {
	trace     *telemetry.Trace
	store     kv.Store
	keys      kv.Keys
	defaults  KeyPolicy
	staleness time.Duration
	logger    *zap.Logger
	clock     func() time.Time

	mu        sync.RWMutex
	current   *KeyPolicy
	refreshMu sync.Mutex
}

func NewConfigProvider(
	trace *telemetry.Trace,
	store kv.Store,
	keys kv.Keys,
	config *config.Configuration,
	logger *zap.Logger,
) *ConfigProvider {
	staleness := defaultPolicyCacheTTL
	if config.KeyPolicy.CacheSeconds > 0 {
		staleness = time.Duration(config.KeyPolicy.CacheSeconds) * time.Second
	}
	return &ConfigProvider{
		trace:     trace,
		store:     store,
		keys:      keys,
		defaults:  defaultKeyPolicy(config.KeyPolicy),
		staleness: staleness,
		logger:    logger,
		clock:     time.Now,
	}
}

func defaultKeyPolicy(cfg config.KeyPolicy) KeyPolicy {
	month := clampDays(float64(cfg.PaidMonthDays), defaultPaidMonthDays)
	return KeyPolicy{
		FreeTTLHours:     clampHours(float64(cfg.FreeTTLHours)),
		PaidMonthDays:    month,
		Paid3MonthDays:   clampDays(float64(cfg.Paid3MonthDays), month*3),
		Paid6MonthDays:   clampDays(float64(cfg.Paid6MonthDays), month*6),
		PaidLifetimeDays: clampDays(float64(cfg.PaidLifetimeDays), defaultPaidLifetimeDays),
		Source:           "defaults",
	}
}

// clampHours 非正數或非數字回到預設，超過上限夾到上限
func clampHours(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return defaultFreeTTLHours
	}
	return math.Min(math.Max(v, minFreeTTLHours), maxFreeTTLHours)
}

func clampDays(v, fallback float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		v = fallback
	}
	return math.Min(math.Max(v, minPaidDays), maxPaidDays)
}

// Policy 回傳快取中的設定；超過 staleness 時重新載入，載入失敗沿用舊值
func (p *ConfigProvider) Policy(ctx context.Context) *KeyPolicy {
	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()
	if current != nil && p.clock().Sub(current.LoadedAt) < p.staleness {
		return current
	}
	policy, _ := p.Refresh(ctx)
	return policy
}

// Refresh 立即從 KV 重新載入。
// 讀取失敗時回傳錯誤，但仍回傳可用的設定（前一次成功值或預設值）。
func (p *ConfigProvider) Refresh(ctx context.Context) (*KeyPolicy, error) {
	ctx, _, end := p.trace.WithSpan(ctx)
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	loaded, err := p.load(ctx)
	end(err)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.logger.Warn("key policy refresh failed, keeping previous policy", zap.Error(err))
		if p.current != nil {
			// 失敗後同樣等 staleness 才再次載入
			kept := *p.current
			kept.LoadedAt = p.clock()
			p.current = &kept
			return p.current, err
		}
		fallback := p.defaults
		fallback.LoadedAt = p.clock()
		p.current = &fallback
		return p.current, err
	}
	p.current = loaded
	return loaded, nil
}

func (p *ConfigProvider) load(ctx context.Context) (*KeyPolicy, error) {
	policy := p.defaults
	policy.LoadedAt = p.clock()

	freeRaw, freeErr := p.store.Get(ctx, p.keys.FreePolicy())
	if freeErr != nil && !errors.Is(freeErr, kv.ErrNotFound) {
		return nil, freeErr
	}
	paidRaw, paidErr := p.store.Get(ctx, p.keys.PaidPolicy())
	if paidErr != nil && !errors.Is(paidErr, kv.ErrNotFound) {
		return nil, paidErr
	}

	if freeErr == nil {
		policy.Source = "store"
		if doc, err := model.DecodeFreePolicy(freeRaw); err != nil {
			p.logger.Warn("free key policy document is malformed, using defaults", zap.Error(err))
		} else if hours, ok := doc.Hours(); ok {
			policy.FreeTTLHours = clampHours(hours)
		}
	}
	if paidErr == nil {
		policy.Source = "store"
		doc, err := model.DecodePaidPolicy(paidRaw)
		if err != nil {
			p.logger.Warn("paid plan policy document is malformed, using defaults", zap.Error(err))
		} else {
			if v, ok := doc.Month(); ok {
				policy.PaidMonthDays = clampDays(v, policy.PaidMonthDays)
			}
			policy.Paid3MonthDays = p.planDays(doc.ThreeMonth, policy.PaidMonthDays*3)
			policy.Paid6MonthDays = p.planDays(doc.SixMonth, policy.PaidMonthDays*6)
			if v, ok := doc.Lifetime(); ok {
				policy.PaidLifetimeDays = clampDays(v, policy.PaidLifetimeDays)
			}
		}
	}
	return &policy, nil
}

func (p *ConfigProvider) planDays(read func() (float64, bool), derived float64) float64 {
	if v, ok := read(); ok {
		return clampDays(v, derived)
	}
	return clampDays(derived, derived)
}

// FreeTTL 目前 free key 的有效期
func (p *ConfigProvider) FreeTTL(ctx context.Context) time.Duration {
	return p.Policy(ctx).FreeTTL()
}

// PlanDuration 目前 paid plan 的有效期；未知 plan 以 month 計
func (p *ConfigProvider) PlanDuration(ctx context.Context, plan core.PaidPlan) time.Duration {
	return p.Policy(ctx).PlanDuration(plan)
}

// Update 寫入 KV 設定文件（保留文件中其他欄位）後強制重新載入
func (p *ConfigProvider) Update(ctx context.Context, update KeyPolicyUpdate) (*KeyPolicy, error) {
	ctx, _, end := p.trace.WithSpan(ctx)
	var returnedError error
	defer func() { end(returnedError) }()

	if update.FreeTTLHours != nil {
		returnedError = p.mergeDocument(ctx, p.keys.FreePolicy(), map[string]any{
			"ttlHours": clampHours(*update.FreeTTLHours),
		})
		if returnedError != nil {
			return nil, storageError(returnedError, "update free key policy failed")
		}
	}

	paidFields := map[string]any{}
	if update.PaidMonthDays != nil {
		paidFields["monthDays"] = clampDays(*update.PaidMonthDays, defaultPaidMonthDays)
	}
	if update.Paid3MonthDays != nil {
		paidFields["threeMonthDays"] = clampDays(*update.Paid3MonthDays, defaultPaidMonthDays*3)
	}
	if update.Paid6MonthDays != nil {
		paidFields["sixMonthDays"] = clampDays(*update.Paid6MonthDays, defaultPaidMonthDays*6)
	}
	if update.PaidLifetimeDays != nil {
		paidFields["lifetimeDays"] = clampDays(*update.PaidLifetimeDays, defaultPaidLifetimeDays)
	}
	if len(paidFields) > 0 {
		returnedError = p.mergeDocument(ctx, p.keys.PaidPolicy(), paidFields)
		if returnedError != nil {
			return nil, storageError(returnedError, "update paid plan policy failed")
		}
	}

	policy, err := p.Refresh(ctx)
	if err != nil {
		returnedError = err
		return nil, storageError(err, "reload key policy failed")
	}
	return policy, nil
}

func (p *ConfigProvider) mergeDocument(ctx context.Context, key string, fields map[string]any) error {
	raw, err := p.store.Get(ctx, key)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}
	merged, err := model.MergeDocument(raw, fields)
	if err != nil {
		return cErr.ValidateErr("stored policy document is not a JSON object")
	}
	return p.store.Set(ctx, key, merged)
}
