package model

import (
	"keyhub/internal/core"
	"time"
)

type GiveawayParticipant struct {
	DiscordID     string    `json:"discordId" bson:"discordId"`                             // 參加者 Discord ID
	Username      string    `json:"username,omitempty" bson:"username,omitempty"`           // Discord 使用者名稱
	GlobalName    string    `json:"globalName,omitempty" bson:"globalName,omitempty"`       // 顯示名稱
	Discriminator string    `json:"discriminator,omitempty" bson:"discriminator,omitempty"` // 舊制四碼
	Avatar        string    `json:"avatar,omitempty" bson:"avatar,omitempty"`               // 頭像 hash
	JoinedAt      time.Time `json:"joinedAt" bson:"joinedAt"`                               // 第一次參加時間
}

type GiveawayWinner struct {
	GiveawayParticipant `bson:",inline"`
	Plan                core.PaidPlan `json:"plan" bson:"plan"`                               // 獎品方案
	Token               string        `json:"token,omitempty" bson:"token,omitempty"`         // 發出的 paid key
	ExpiresAt           *int64        `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"` // key 到期時間（毫秒）
}

type Giveaway struct {
	ID           string                `json:"id" bson:"_id"`                                      // ga_{ms}_{rand}
	GuildID      string                `json:"guildId" bson:"guildId"`                             // Discord 伺服器
	ChannelID    string                `json:"channelId" bson:"channelId"`                         // 公告頻道
	MessageID    string                `json:"messageId,omitempty" bson:"messageId,omitempty"`     // 公告訊息
	CreatedBy    string                `json:"createdBy" bson:"createdBy"`                         // 建立者 Discord ID
	Prize        string                `json:"prize,omitempty" bson:"prize,omitempty"`             // 獎品說明
	Description  string                `json:"description,omitempty" bson:"description,omitempty"` // 活動說明
	WinnersCount int                   `json:"winnersCount" bson:"winnersCount"`                   // 得獎人數
	Plan         core.PaidPlan         `json:"plan" bson:"plan"`                                   // 獎品 paid plan
	Duration     time.Duration         `json:"durationMs" bson:"durationMs"`                       // 活動長度
	EndsAt       time.Time             `json:"endsAt" bson:"endsAt"`                               // 預計結束時間
	Status       core.GiveawayStatus   `json:"status" bson:"status"`                               // running / ended / cancelled
	Participants []GiveawayParticipant `json:"participants" bson:"participants"`                   // 參加者快照
	Winners      []GiveawayWinner      `json:"winners" bson:"winners"`                             // 得獎者與 key
	EndedAt      *time.Time            `json:"endedAt,omitempty" bson:"endedAt,omitempty"`         // 實際結束時間
	CreatedAt    time.Time             `json:"createdAt" bson:"createdAt"`                         // 建立時間
	UpdatedAt    time.Time             `json:"updatedAt" bson:"updatedAt"`                         // 更新時間
}
