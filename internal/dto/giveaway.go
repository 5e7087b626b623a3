package dto

import (
	mongoModel "keyhub/internal/database/mongodb/model"
	"keyhub/internal/service"
	"time"
)

// bot 建立抽獎
type CreateGiveawayDto struct {
	GuildID         string `json:"guildId" binding:"required"`
	ChannelID       string `json:"channelId" binding:"required"`
	MessageID       string `json:"messageId,omitempty"`
	CreatedBy       string `json:"createdBy" binding:"required"`
	Prize           string `json:"prize" binding:"required,max=200"`
	Description     string `json:"description,omitempty" binding:"max=2000"`
	WinnersCount    int    `json:"winnersCount" binding:"gte=0,lte=100"`
	Plan            string `json:"plan,omitempty" binding:"omitempty,paidplan"`
	DurationMinutes int64  `json:"durationMinutes" binding:"gte=0,lte=525600"`
}

func (d *CreateGiveawayDto) ToInput() service.CreateGiveawayInput {
	return service.CreateGiveawayInput{
		GuildID:      d.GuildID,
		ChannelID:    d.ChannelID,
		MessageID:    d.MessageID,
		CreatedBy:    d.CreatedBy,
		Prize:        d.Prize,
		Description:  d.Description,
		WinnersCount: d.WinnersCount,
		Plan:         d.Plan,
		Duration:     time.Duration(d.DurationMinutes) * time.Minute,
	}
}

type JoinGiveawayDto struct {
	DiscordID     string `json:"discordId" binding:"required"`
	Username      string `json:"username,omitempty"`
	GlobalName    string `json:"globalName,omitempty"`
	Discriminator string `json:"discriminator,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

func (d *JoinGiveawayDto) ToParticipant() mongoModel.GiveawayParticipant {
	return mongoModel.GiveawayParticipant{
		DiscordID:     d.DiscordID,
		Username:      d.Username,
		GlobalName:    d.GlobalName,
		Discriminator: d.Discriminator,
		Avatar:        d.Avatar,
	}
}

type AttachGiveawayMessageDto struct {
	MessageID string `json:"messageId" binding:"required"`
}

type EndGiveawayResponseDto struct {
	Giveaway *mongoModel.Giveaway `json:"giveaway"`
	// false 表示先前已結束，回傳既有結果
	NewlyEnded bool `json:"newlyEnded"`
}
