package handler

import (
	"keyhub/internal/dto"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	trace  *telemetry.Trace
	policy *service.ConfigProvider
}

func NewConfigHandler(trace *telemetry.Trace, policy *service.ConfigProvider) *ConfigHandler {
	return &ConfigHandler{trace: trace, policy: policy}
}

// GetKeyPolicy 目前生效的期限設定
// @Summary 取得 key 期限設定（快取值）
// @Tags Admin-Config
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.KeyPolicy
// @Router /admin/config/key-policy [get]
func (h *ConfigHandler) GetKeyPolicy(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	response.Success(c, h.policy.Policy(ctx))
}

// UpdateKeyPolicy 更新期限設定
// @Summary 更新 key 期限設定文件（只影響之後發出或續期的 key）
// @Tags Admin-Config
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.UpdateKeyPolicyDto true "要修改的欄位"
// @Success 200 {object} service.KeyPolicy
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /admin/config/key-policy [put]
func (h *ConfigHandler) UpdateKeyPolicy(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.UpdateKeyPolicyDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	if req.Empty() {
		response.AbortWithError(c, cErr.ValidateErr("no policy field to update"))
		return
	}
	policy, err := h.policy.Update(ctx, req.ToUpdate())
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, policy)
}

// Refresh 強制重新載入
// @Summary 立即重新讀取期限設定
// @Tags Admin-Config
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.KeyPolicy
// @Failure 503 {object} response.Response
// @Router /admin/config/refresh [post]
func (h *ConfigHandler) Refresh(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	policy, err := h.policy.Refresh(ctx)
	if err != nil {
		cause = err
		response.AbortWithError(c, cErr.StorageUnavailable("policy refresh failed, previous policy kept"))
		return
	}
	response.Success(c, policy)
}
