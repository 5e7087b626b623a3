package handler

import (
	"keyhub/config"
	"keyhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	config       *config.Configuration
	healthStatus *service.HealthService
}

func NewHealthHandler(config *config.Configuration, status *service.HealthService) *HealthHandler {
	return &HealthHandler{config: config, healthStatus: status}
}

// HealthCheck 健康檢查
// @Summary 健康檢查
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response
// @Router /health-check [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.config.App.Name})
}

// Version 服務版本
// @Summary 服務版本
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": h.config.App.Name, "version": h.config.App.Version})
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.healthStatus.IsLive() {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
		return
	}
	c.Status(http.StatusServiceUnavailable)
}

// Readiness 啟動完成且 redis / mongodb 可連線才回 200
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.healthStatus.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	if failed := h.healthStatus.Dependencies(c.Request.Context()); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
