package router

import (
	"keyhub/internal/handler"
	"keyhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// BotRouter 給身分協作方（Discord bot）使用的端點
type BotRouter struct {
	keyHandler      *handler.KeyHandler
	giveawayHandler *handler.GiveawayHandler
	botAuth         *middleware.BotAuth
}

func NewBotRouter(
	keyHandler *handler.KeyHandler,
	giveawayHandler *handler.GiveawayHandler,
	botAuth *middleware.BotAuth,
) *BotRouter {
	return &BotRouter{
		keyHandler:      keyHandler,
		giveawayHandler: giveawayHandler,
		botAuth:         botAuth,
	}
}

func (br *BotRouter) RegisterRoutes(r *gin.Engine) {
	bot := r.Group("/api/bot")
	bot.Use(br.botAuth.Handler())

	bot.POST("/keys/free", br.keyHandler.ClaimFree)

	owned := bot.Group("/owners/:ownerId/keys")
	{
		owned.GET("", br.keyHandler.ListOwned)
		owned.DELETE("/:token", br.keyHandler.DeleteOwned)
		owned.POST("/:token/renew", br.keyHandler.RenewOwned)
		owned.POST("/:token/reset-binding", br.keyHandler.ResetOwned)
	}

	giveaways := bot.Group("/giveaways")
	{
		giveaways.POST("", br.giveawayHandler.Create)
		giveaways.GET("/:id", br.giveawayHandler.Get)
		giveaways.PUT("/:id/message", br.giveawayHandler.AttachMessage)
		giveaways.POST("/:id/join", br.giveawayHandler.Join)
		giveaways.POST("/:id/end", br.giveawayHandler.End)
	}
}
