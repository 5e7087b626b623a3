package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"
	"keyhub/utils/keytoken"

	"github.com/go-playground/validator/v10"
)

const KeyRecordSchemaVersion = 2

var schemaValidator = validator.New()

type BoundIdentity struct {
	ExternalUserID      string `json:"externalUserId,omitempty"`
	ExternalUsername    string `json:"externalUsername,omitempty"`
	ExternalDisplayName string `json:"externalDisplayName,omitempty"`
	DeviceID            string `json:"deviceId,omitempty"`
	BoundAt             int64  `json:"boundAt,omitempty"`
}

func (b *BoundIdentity) IsEmpty() bool {
	return b == nil || (b.ExternalUserID == "" && b.ExternalUsername == "" && b.DeviceID == "")
}

type KeyRecord struct {
	SchemaVersion      int            `json:"schemaVersion"`
	Token              string         `json:"token" validate:"required"`
	OwnerID            string         `json:"ownerId" validate:"required"`
	Tier               core.KeyTier   `json:"tier" validate:"oneof=free paid"`
	Plan               core.PaidPlan  `json:"plan,omitempty"`
	ProviderLabel      string         `json:"provider,omitempty"`
	CreatedAt          int64          `json:"createdAt" validate:"gt=0"`
	ExpiresAt          *int64         `json:"expiresAt"`
	Valid              bool           `json:"valid"`
	Deleted            bool           `json:"deleted"`
	DeletedAt          *int64         `json:"deletedAt,omitempty"`
	Binding            *BoundIdentity `json:"binding,omitempty"`
	BindingResetCount  int            `json:"bindingResetCount"`
	LastBindingResetAt *int64         `json:"lastBindingResetAt,omitempty"`
	SourceIP           string         `json:"sourceIp,omitempty"`
	CreationContext    string         `json:"creationContext,omitempty"`
	UpdatedAt          int64          `json:"updatedAt,omitempty"`
}

// IsExpired now 與 expiresAt 皆為毫秒；expiresAt 為空視為未過期
func (r *KeyRecord) IsExpired(nowMs int64) bool {
	return r.ExpiresAt != nil && nowMs > *r.ExpiresAt
}

func (r *KeyRecord) Status(nowMs int64) core.KeyStatus {
	switch {
	case r.Deleted:
		return core.KeyStatusDeleted
	case !r.Valid:
		return core.KeyStatusInvalid
	case r.IsExpired(nowMs):
		return core.KeyStatusExpired
	default:
		return core.KeyStatusActive
	}
}

func (r *KeyRecord) Encode() ([]byte, error) {
	r.SchemaVersion = KeyRecordSchemaVersion
	if r.Binding.IsEmpty() {
		r.Binding = nil
	}
	return json.Marshal(r)
}

func (r *KeyRecord) Validate() error {
	if err := schemaValidator.Struct(r); err != nil {
		return err
	}
	tier, ok := keytoken.TierOf(r.Token)
	if !ok {
		return fmt.Errorf("token %q has no tier prefix", r.Token)
	}
	if tier != r.Tier {
		return fmt.Errorf("token prefix says %s but record tier is %s", tier, r.Tier)
	}
	if r.Tier == core.TierPaid {
		if _, ok := core.ParsePaidPlan(string(r.Plan)); !ok {
			return fmt.Errorf("unknown paid plan %q", r.Plan)
		}
	}
	return nil
}

// DecodeKeyRecord 反序列化並驗證；舊版（無 schemaVersion）資料會先轉成新版
func DecodeKeyRecord(raw []byte) (*KeyRecord, error) {
	var probe schemaProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Join(kv.ErrMalformed, err)
	}

	var rec *KeyRecord
	switch probe.SchemaVersion {
	case 0:
		var legacy legacyKeyRecord
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, errors.Join(kv.ErrMalformed, err)
		}
		rec = legacy.migrate()
	case KeyRecordSchemaVersion:
		rec = &KeyRecord{}
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, errors.Join(kv.ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported key record schema %d", kv.ErrMalformed, probe.SchemaVersion)
	}

	rec.applyDefaults()
	if err := rec.Validate(); err != nil {
		return nil, errors.Join(kv.ErrMalformed, err)
	}
	return rec, nil
}

func (r *KeyRecord) applyDefaults() {
	r.SchemaVersion = KeyRecordSchemaVersion
	r.Token = strings.TrimSpace(r.Token)
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	if r.Tier == "" {
		if tier, ok := keytoken.TierOf(r.Token); ok {
			r.Tier = tier
		}
	}
	if r.Tier == core.TierPaid {
		plan, ok := core.ParsePaidPlan(string(r.Plan))
		if !ok && r.Plan == "" {
			plan, ok = core.PlanMonth, true
		}
		if ok {
			r.Plan = plan
		}
		if r.ProviderLabel == "" {
			r.ProviderLabel = r.Plan.Label()
		}
	} else {
		r.Plan = ""
	}
	if r.Binding.IsEmpty() {
		r.Binding = nil
	}
	if r.UpdatedAt == 0 {
		r.UpdatedAt = r.CreatedAt
	}
}

// legacyKeyRecord 舊版 free/paid key 的欄位形狀
type legacyKeyRecord struct {
	Token          flexString `json:"token"`
	UserID         flexString `json:"userId"`
	OwnerDiscordID flexString `json:"ownerDiscordId"`
	DiscordID      flexString `json:"discordId"`
	Tier           flexString `json:"tier"`
	Type           flexString `json:"type"`
	Plan           flexString `json:"plan"`
	Provider       flexString `json:"provider"`
	CreatedAt      flexMillis `json:"createdAt"`
	ExpiresAfter   flexMillis `json:"expiresAfter"`
	Valid          *bool      `json:"valid"`
	Deleted        *bool      `json:"deleted"`
	DeletedAt      flexMillis `json:"deletedAt"`
	ByIP           flexString `json:"byIp"`
	BoundUserID    flexString `json:"boundRobloxUserId"`
	RobloxUserID   flexString `json:"robloxUserId"`
	BoundUsername  flexString `json:"boundRobloxUsername"`
	RobloxUsername flexString `json:"robloxUsername"`
	BoundDisplay   flexString `json:"boundRobloxDisplayName"`
	BoundHWID      flexString `json:"boundRobloxHWID"`
	RobloxHWID     flexString `json:"robloxHWID"`
	HWID           flexString `json:"hwid"`
	HWIDUpper      flexString `json:"HWID"`
	BoundAt        flexMillis `json:"boundAt"`
	ResetCount     flexString `json:"hwidResetCount"`
	LastResetAt    flexMillis `json:"lastHwidResetAt"`
}

func (l legacyKeyRecord) migrate() *KeyRecord {
	rec := &KeyRecord{
		Token:              string(l.Token),
		OwnerID:            firstNonEmpty(l.OwnerDiscordID, l.UserID, l.DiscordID),
		Tier:               core.KeyTier(strings.ToLower(string(l.Tier))),
		Plan:               core.PaidPlan(firstNonEmpty(l.Plan, l.Type)),
		ProviderLabel:      string(l.Provider),
		CreatedAt:          l.CreatedAt.ms,
		ExpiresAt:          l.ExpiresAfter.ptr(),
		Valid:              l.Valid == nil || *l.Valid,
		Deleted:            l.Deleted != nil && *l.Deleted,
		DeletedAt:          l.DeletedAt.ptr(),
		LastBindingResetAt: l.LastResetAt.ptr(),
		SourceIP:           string(l.ByIP),
	}
	if n, err := strconv.Atoi(string(l.ResetCount)); err == nil {
		rec.BindingResetCount = n
	}

	binding := &BoundIdentity{
		ExternalUserID:      firstNonEmpty(l.BoundUserID, l.RobloxUserID),
		ExternalUsername:    firstNonEmpty(l.BoundUsername, l.RobloxUsername),
		ExternalDisplayName: string(l.BoundDisplay),
		DeviceID:            firstNonEmpty(l.BoundHWID, l.RobloxHWID, l.HWID, l.HWIDUpper),
		BoundAt:             l.BoundAt.ms,
	}
	if !binding.IsEmpty() {
		if binding.BoundAt == 0 {
			binding.BoundAt = rec.CreatedAt
		}
		rec.Binding = binding
	}
	return rec
}
