package router

import (
	"keyhub/internal/handler"

	"github.com/gin-gonic/gin"
)

// HealthRouter 探針與版本資訊，不經過回應封裝
type HealthRouter struct {
	health *handler.HealthHandler
}

func NewHealthRouter(health *handler.HealthHandler) *HealthRouter {
	return &HealthRouter{health: health}
}

func (r *HealthRouter) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health-check", r.health.HealthCheck)
	engine.GET("/version", r.health.Version)

	probes := engine.Group("/health")
	probes.GET("/liveness", r.health.Liveness)
	probes.GET("/readiness", r.health.Readiness)
}
