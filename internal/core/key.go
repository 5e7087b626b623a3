package core

import "strings"

// KeyTier
type KeyTier string

const (
	TierFree KeyTier = "free"
	TierPaid KeyTier = "paid"
)

// PaidPlan
type PaidPlan string

const (
	PlanMonth      PaidPlan = "month"
	PlanThreeMonth PaidPlan = "3month"
	PlanSixMonth   PaidPlan = "6month"
	PlanLifetime   PaidPlan = "lifetime"
)

var PaidPlans = []PaidPlan{PlanMonth, PlanThreeMonth, PlanSixMonth, PlanLifetime}

// ParsePaidPlan 正規化 plan 字串；無法辨識時 ok=false。
func ParsePaidPlan(raw string) (plan PaidPlan, ok bool) {
	p := strings.ToLower(strings.TrimSpace(raw))
	switch p {
	case "three", "3":
		p = string(PlanThreeMonth)
	case "six", "6":
		p = string(PlanSixMonth)
	}
	for _, v := range PaidPlans {
		if PaidPlan(p) == v {
			return v, true
		}
	}
	return "", false
}

// Label 對應後台顯示的 provider 標籤
func (p PaidPlan) Label() string {
	switch p {
	case PlanThreeMonth:
		return "PAID 3 MONTH"
	case PlanSixMonth:
		return "PAID 6 MONTH"
	case PlanLifetime:
		return "PAID LIFETIME"
	default:
		return "PAID MONTH"
	}
}

// KeyStatus 由紀錄欄位推導，不落地
type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusExpired KeyStatus = "expired"
	KeyStatusInvalid KeyStatus = "invalid"
	KeyStatusDeleted KeyStatus = "deleted"
)

// ReasonCode 驗證結果代碼，客戶端依此顯示鎖定原因
type ReasonCode string

const (
	ReasonOK           ReasonCode = "OK"
	ReasonNotFound     ReasonCode = "NOT_FOUND"
	ReasonDeleted      ReasonCode = "DELETED"
	ReasonExpired      ReasonCode = "EXPIRED"
	ReasonInvalid      ReasonCode = "INVALID"
	ReasonBoundToOther ReasonCode = "BOUND_TO_OTHER"
)

// KeyEvent 寫入 fluentd 的 key 生命週期事件
type KeyEvent string

const (
	KeyEventCreated       KeyEvent = "created"
	KeyEventRenewed       KeyEvent = "renewed"
	KeyEventDeleted       KeyEvent = "deleted"
	KeyEventBound         KeyEvent = "bound"
	KeyEventBindingReset  KeyEvent = "binding_reset"
	KeyEventOwnerChanged  KeyEvent = "owner_changed"
	KeyEventIndexRepaired KeyEvent = "index_repaired"
	KeyEventPurged        KeyEvent = "purged"
)

// GiveawayStatus
type GiveawayStatus string

const (
	GiveawayRunning   GiveawayStatus = "running"
	GiveawayEnded     GiveawayStatus = "ended"
	GiveawayCancelled GiveawayStatus = "cancelled"
)
