package router

import (
	docs "keyhub/cmd/docs"
	"keyhub/config"
	"keyhub/internal/middleware"
	"keyhub/utils/validate"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewHealthRouter,
	NewPublicRouter,
	NewBotRouter,
	NewAdminRouter,
)

// NewRouter 組裝全域 middleware 與各組路由
func NewRouter(
	config *config.Configuration,
	traceEntry *middleware.TraceEntry,
	recovery *middleware.Recovery,
	cors *middleware.Cors,
	logger *middleware.Logger,
	responseMiddleware *middleware.Response,
	healthRouter *HealthRouter,
	publicRouter *PublicRouter,
	botRouter *BotRouter,
	adminRouter *AdminRouter,
) (*gin.Engine, error) {

	switch {
	case config.App.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case config.App.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	if err := validate.RegisterRules(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(traceEntry.Handler())
	router.Use(logger.LoggerHandler())
	router.Use(cors.CorsHandler())
	router.Use(recovery.ErrorHandler())
	router.Use(responseMiddleware.FormatHandler())

	healthRouter.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", func(c *gin.Context) {
			docs.SwaggerInfo.Host = c.Request.Host

			if config.App.IsProduction() {
				docs.SwaggerInfo.Schemes = []string{"https"}
			}
		}, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	publicRouter.RegisterRoutes(router)
	botRouter.RegisterRoutes(router)
	adminRouter.RegisterRoutes(router)
	if !config.App.IsProduction() {
		pprof.Register(router)
	}
	return router, nil
}
