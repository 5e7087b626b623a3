package core

import "go.mongodb.org/mongo-driver/bson"

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseType defines the type of database
type DatabaseType string

const (
	Mongo DatabaseType = "mongo"
	Redis DatabaseType = "redis"
)

// Databases contains all supported database types
var Databases = []DatabaseType{Mongo, Redis}

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoDBKeyhub MongoDatabaseName = "keyhub"
)

// MongoDB collections
const (
	MongoCollectionGiveaways   MongoCollection = "giveaways"
	MongoCollectionPurgeAudits MongoCollection = "purge_audits"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName      RedisKey = "keyhub"             // rate limit 等服務自用 key 的前綴
	RedisKeyDefaultPrefix   RedisKey = "exhub"              // 資料 key 預設命名空間
	RedisKeyFreeToken       RedisKey = "freekey:token"      // free key 紀錄
	RedisKeyFreeOwnerIndex  RedisKey = "freekey:user"       // free key owner index（set）
	RedisKeyPaidToken       RedisKey = "paidkey:token"      // paid key 紀錄
	RedisKeyPaidOwnerIndex  RedisKey = "paidkey:user"       // paid key owner index（set）
	RedisKeyFreeTombstones  RedisKey = "freekey:deleted"    // owner 已刪除的 free key（set），供 purge 使用
	RedisKeyPaidTombstones  RedisKey = "paidkey:deleted"    // owner 已刪除的 paid key（set）
	RedisKeyExecEntry       RedisKey = "exec-user"          // 執行彙總
	RedisKeyExecIndex       RedisKey = "exec-users:index"   // 執行彙總 index（set）
	RedisKeyFreePolicy      RedisKey = "freekey:ui-config"  // free key 期限設定文件
	RedisKeyPaidPolicy      RedisKey = "paidplan:config"    // paid plan 期限設定文件
	RedisKeyRateLimitWindow RedisKey = "ratelimit"          // 公開端點限流
)

const (
	FluentdRequest   FluentdSubTag = "request_log"
	FluentdResponse  FluentdSubTag = "response_log"
	FluentdExecution FluentdSubTag = "execution_log"
	FluentdKeyEvent  FluentdSubTag = "key_event_log"
)

// ListOptions 分頁查詢（page 由 0 起算）
type ListOptions struct {
	Filter bson.M `json:"filter,omitempty" bson:"filter,omitempty"`
	Page   int64  `json:"page,omitempty" bson:"page,omitempty"`
	Size   int64  `json:"size,omitempty" bson:"size,omitempty"`
}
