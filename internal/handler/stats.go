package handler

import (
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	trace *telemetry.Trace
	stats *service.StatsService
}

func NewStatsHandler(trace *telemetry.Trace, stats *service.StatsService) *StatsHandler {
	return &StatsHandler{trace: trace, stats: stats}
}

// Get 後台統計
// @Summary 執行統計（總量、時間窗、排行、最近紀錄）
// @Tags Admin-Stats
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Stats
// @Failure 503 {object} response.Response
// @Router /admin/stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	stats, err := h.stats.Get(ctx)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, stats)
}
