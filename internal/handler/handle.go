package handler

import (
	"keyhub/internal/middleware"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewKeyHandler,
	NewValidateHandler,
	NewExecHandler,
	NewStatsHandler,
	NewConfigHandler,
	NewOwnerHandler,
	NewGiveawayHandler,
	NewHealthHandler,
)

// actorOf 由 AdminAuth / BotAuth 放入的操作者標記，寫入 key 事件
func actorOf(c *gin.Context) string {
	if actor := c.GetString(middleware.ContextActor); actor != "" {
		return actor
	}
	return "anonymous"
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
