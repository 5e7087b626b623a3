package dto

import (
	"keyhub/internal/core"
	"keyhub/internal/database/redis/model"
	"keyhub/internal/pkg/request"
)

// 後台發 key
type CreateKeyDto struct {
	OwnerID       string       `json:"ownerId" binding:"required,max=64"`
	Tier          core.KeyTier `json:"tier" binding:"required,keytier"`
	Plan          string       `json:"plan,omitempty" binding:"omitempty,paidplan"`
	ProviderLabel string       `json:"provider,omitempty" binding:"omitempty,max=64"`
}

func (CreateKeyDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"OwnerID.required": "ownerId is required",
		"Tier.required":    "tier is required",
		"Tier.keytier":     "tier must be free or paid",
		"Plan.paidplan":    "plan must be one of month, 3month, 6month, lifetime",
	}
}

// bot 代使用者領取 free key
type CreateFreeKeyDto struct {
	OwnerID string `json:"ownerId" binding:"required,max=64"`
	// 領取管道，例如 linkvertise / workink
	ProviderLabel string `json:"providerLabel" binding:"omitempty,max=32"`
}

// 轉移 key 擁有者
type ReassignOwnerDto struct {
	OwnerID string `json:"ownerId" binding:"required,max=64"`
}

type KeyResponseDto struct {
	*model.KeyRecord
	Status core.KeyStatus `json:"status"`
}

func NewKeyResponse(record *model.KeyRecord, nowMs int64) KeyResponseDto {
	return KeyResponseDto{KeyRecord: record, Status: record.Status(nowMs)}
}

func NewKeyResponses(records []*model.KeyRecord, nowMs int64) []KeyResponseDto {
	out := make([]KeyResponseDto, 0, len(records))
	for _, r := range records {
		out = append(out, NewKeyResponse(r, nowMs))
	}
	return out
}

type DeleteKeyResponseDto struct {
	Token   string `json:"token"`
	Deleted bool   `json:"deleted"`
	// false 表示原本就是 deleted（冪等）
	Updated bool `json:"updated"`
}

type ReassignOwnerResponseDto struct {
	KeyResponseDto
	Changed bool `json:"changed"`
}
