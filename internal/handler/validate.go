package handler

import (
	"keyhub/internal/dto"
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ValidateHandler struct {
	trace      *telemetry.Trace
	validation *service.ValidationService
}

func NewValidateHandler(trace *telemetry.Trace, validation *service.ValidationService) *ValidateHandler {
	return &ValidateHandler{trace: trace, validation: validation}
}

// Validate 驗證 key
// @Summary 驗證 key，第一次帶身分時綁定
// @Description 找不到、已刪除、過期、已綁定他人皆回 200 與 valid=false；無法確認狀態（儲存故障）回 503
// @Tags Public
// @Accept json
// @Produce json
// @Param token query string false "Key token（GET）"
// @Param userId query string false "遊戲帳號 ID"
// @Param username query string false "遊戲帳號名稱"
// @Param displayName query string false "顯示名稱"
// @Param hwid query string false "裝置 ID"
// @Param body body dto.ValidateKeyDto false "POST 時使用"
// @Success 200 {object} service.ValidationResult
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/keys/validate [get]
// @Router /api/keys/validate [post]
func (h *ValidateHandler) Validate(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.ValidateKeyDto
	bind := validate.BindQuery
	if c.Request.Method == http.MethodPost {
		bind = validate.BindAndValidate
	}
	if bindErr, respErr := bind(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}

	result, err := h.validation.Validate(ctx, req.Token, service.Identity{
		UserID:      req.UserID.String(),
		Username:    req.Username,
		DisplayName: req.DisplayName,
		DeviceID:    req.HWID,
	})
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}
