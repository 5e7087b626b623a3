package router

import (
	"keyhub/internal/core"
	"keyhub/internal/handler"
	"keyhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AdminRouter struct {
	keyHandler      *handler.KeyHandler
	ownerHandler    *handler.OwnerHandler
	statsHandler    *handler.StatsHandler
	configHandler   *handler.ConfigHandler
	giveawayHandler *handler.GiveawayHandler
	adminAuth       *middleware.AdminAuth
}

func NewAdminRouter(
	keyHandler *handler.KeyHandler,
	ownerHandler *handler.OwnerHandler,
	statsHandler *handler.StatsHandler,
	configHandler *handler.ConfigHandler,
	giveawayHandler *handler.GiveawayHandler,
	adminAuth *middleware.AdminAuth,
) *AdminRouter {
	return &AdminRouter{
		keyHandler:      keyHandler,
		ownerHandler:    ownerHandler,
		statsHandler:    statsHandler,
		configHandler:   configHandler,
		giveawayHandler: giveawayHandler,
		adminAuth:       adminAuth,
	}
}

func (ar *AdminRouter) RegisterRoutes(r *gin.Engine) {
	admin := r.Group("/admin")

	// readonly 只能看統計
	admin.GET("/stats", ar.adminAuth.Handler(core.RoleAdmin, core.RoleReadOnly), ar.statsHandler.Get)

	manage := admin.Group("")
	manage.Use(ar.adminAuth.Handler(core.RoleAdmin))

	keys := manage.Group("/keys")
	{
		keys.POST("", ar.keyHandler.Create)
		keys.GET("/:token", ar.keyHandler.Get)
		keys.DELETE("/:token", ar.keyHandler.Delete)
		keys.POST("/:token/renew", ar.keyHandler.Renew)
		keys.POST("/:token/reset-binding", ar.keyHandler.ResetBinding)
		keys.PUT("/:token/owner", ar.keyHandler.ReassignOwner)
		keys.GET("/:token/executions", ar.keyHandler.Executions)
	}

	owners := manage.Group("/owners/:ownerId")
	{
		owners.GET("/keys", ar.keyHandler.ListByOwner)
		owners.POST("/repair-index", ar.ownerHandler.RepairIndex)
		owners.DELETE("", ar.ownerHandler.Purge)
		owners.GET("/purges", ar.ownerHandler.PurgeHistory)
	}

	conf := manage.Group("/config")
	{
		conf.GET("/key-policy", ar.configHandler.GetKeyPolicy)
		conf.PUT("/key-policy", ar.configHandler.UpdateKeyPolicy)
		conf.POST("/refresh", ar.configHandler.Refresh)
	}

	giveaways := manage.Group("/giveaways")
	{
		giveaways.GET("", ar.giveawayHandler.List)
		giveaways.POST("/:id/cancel", ar.giveawayHandler.Cancel)
		giveaways.DELETE("/:id", ar.giveawayHandler.Delete)
	}
}
