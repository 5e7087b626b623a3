package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurgeAudit 每次 owner 資料清除留下一筆稽核
type PurgeAudit struct {
	ID                primitive.ObjectID `json:"id" bson:"_id"`
	OwnerID           string             `json:"ownerId" bson:"ownerId"`
	Actor             string             `json:"actor,omitempty" bson:"actor,omitempty"`
	FreeKeysRemoved   int                `json:"freeKeysRemoved" bson:"freeKeysRemoved"`
	PaidKeysRemoved   int                `json:"paidKeysRemoved" bson:"paidKeysRemoved"`
	ExecutionsRemoved int                `json:"executionsRemoved" bson:"executionsRemoved"`
	Tokens            []string           `json:"tokens" bson:"tokens"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
}
