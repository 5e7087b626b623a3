package handler

import (
	"errors"
	"io"
	"keyhub/internal/dto"
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"

	"github.com/gin-gonic/gin"
)

type ExecHandler struct {
	trace      *telemetry.Trace
	executions *service.ExecutionService
}

func NewExecHandler(trace *telemetry.Trace, executions *service.ExecutionService) *ExecHandler {
	return &ExecHandler{trace: trace, executions: executions}
}

// Report 執行回報
// @Summary 回報一次 script 執行（body 可 gzip / br / zstd 壓縮）
// @Tags Public
// @Accept json
// @Produce json
// @Param body body dto.ExecReportDto true "執行資訊"
// @Success 200 {object} dto.ExecResponseDto
// @Failure 400 {object} response.Response "missing_fields"
// @Failure 503 {object} response.Response
// @Router /api/exec [post]
func (h *ExecHandler) Report(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.ExecReportDto
	// 空 body 交給 service 回 missing_fields
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil && !errors.Is(bindErr, io.EOF) {
		response.AbortWithError(c, respErr)
		return
	}
	aggregate, err := h.executions.RecordExecution(ctx, req.ToInput(c.ClientIP()))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.ExecResponseDto{
		OK: true,
		Received: dto.ExecReceivedDto{
			ScriptID: aggregate.ScriptID,
			UserID:   aggregate.UserID,
			HWID:     aggregate.DeviceID,
			Total:    aggregate.TotalExecutes,
		},
	})
}
