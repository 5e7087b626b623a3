package router

import (
	"keyhub/internal/handler"
	"keyhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// PublicRouter 遊戲端 loader 直接呼叫的端點，依 IP 限流
type PublicRouter struct {
	validateHandler *handler.ValidateHandler
	execHandler     *handler.ExecHandler
	rateLimit       *middleware.RateLimit
	decompress      *middleware.Decompress
}

func NewPublicRouter(
	validateHandler *handler.ValidateHandler,
	execHandler *handler.ExecHandler,
	rateLimit *middleware.RateLimit,
	decompress *middleware.Decompress,
) *PublicRouter {
	return &PublicRouter{
		validateHandler: validateHandler,
		execHandler:     execHandler,
		rateLimit:       rateLimit,
		decompress:      decompress,
	}
}

func (pr *PublicRouter) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	validate := api.Group("/keys/validate")
	validate.Use(pr.rateLimit.Guard("validate"))
	{
		validate.GET("", pr.validateHandler.Validate)
		validate.POST("", pr.validateHandler.Validate)
	}

	api.POST("/exec", pr.rateLimit.Guard("exec"), pr.decompress.Handler(), pr.execHandler.Report)
}
