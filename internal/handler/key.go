package handler

import (
	"keyhub/internal/core"
	"keyhub/internal/dto"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"
	"strings"

	"github.com/gin-gonic/gin"
)

type KeyHandler struct {
	trace      *telemetry.Trace
	keyService *service.KeyService
	executions *service.ExecutionService
}

func NewKeyHandler(trace *telemetry.Trace, keyService *service.KeyService, executions *service.ExecutionService) *KeyHandler {
	return &KeyHandler{trace: trace, keyService: keyService, executions: executions}
}

// Create 發 key
// @Summary 後台發 free / paid key
// @Tags Admin-Key
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateKeyDto true "key 資訊"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /admin/keys [post]
func (h *KeyHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.CreateKeyDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	record, err := h.keyService.Create(ctx, service.CreateKeyInput{
		OwnerID:         req.OwnerID,
		Tier:            core.KeyTier(strings.ToLower(string(req.Tier))),
		Plan:            req.Plan,
		ProviderLabel:   req.ProviderLabel,
		SourceIP:        c.ClientIP(),
		CreationContext: "admin",
		Actor:           actorOf(c),
	})
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, dto.NewKeyResponse(record, nowMs()))
}

// Get 取得 key
// @Summary 取得單一 key（含已刪除）
// @Tags Admin-Key
// @Security BearerAuth
// @Produce json
// @Param token path string true "Key token"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 404 {object} response.Response
// @Router /admin/keys/{token} [get]
func (h *KeyHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	record, err := h.keyService.Get(ctx, token)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.NewKeyResponse(record, nowMs()))
}

// Renew 續期
// @Summary 續期 key（已刪除的 key 會被恢復）
// @Tags Admin-Key
// @Security BearerAuth
// @Produce json
// @Param token path string true "Key token"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 404 {object} response.Response
// @Router /admin/keys/{token}/renew [post]
func (h *KeyHandler) Renew(c *gin.Context) {
	h.renew(c, "")
}

// Delete 刪除
// @Summary 刪除 key（tombstone，冪等）
// @Tags Admin-Key
// @Security BearerAuth
// @Produce json
// @Param token path string true "Key token"
// @Success 200 {object} dto.DeleteKeyResponseDto
// @Router /admin/keys/{token} [delete]
func (h *KeyHandler) Delete(c *gin.Context) {
	h.delete(c, "")
}

// ResetBinding 重設綁定
// @Summary 清除 key 綁定的遊戲帳號與裝置
// @Tags Admin-Key
// @Security BearerAuth
// @Produce json
// @Param token path string true "Key token"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 404 {object} response.Response
// @Router /admin/keys/{token}/reset-binding [post]
func (h *KeyHandler) ResetBinding(c *gin.Context) {
	h.resetBinding(c, "")
}

// ReassignOwner 轉移擁有者
// @Summary 轉移 paid key 擁有者
// @Tags Admin-Key
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param token path string true "Key token"
// @Param body body dto.ReassignOwnerDto true "新擁有者"
// @Success 200 {object} dto.ReassignOwnerResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/keys/{token}/owner [put]
func (h *KeyHandler) ReassignOwner(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	var req dto.ReassignOwnerDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	record, changed, err := h.keyService.ReassignOwner(ctx, token, req.OwnerID, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.ReassignOwnerResponseDto{
		KeyResponseDto: dto.NewKeyResponse(record, nowMs()),
		Changed:        changed,
	})
}

// Executions key 的執行紀錄
// @Summary 列出引用此 key 的執行彙總
// @Tags Admin-Key
// @Security BearerAuth
// @Produce json
// @Param token path string true "Key token"
// @Success 200 {array} model.ExecutionAggregate
// @Router /admin/keys/{token}/executions [get]
func (h *KeyHandler) Executions(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	aggregates, err := h.executions.ListByToken(ctx, token)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, aggregates)
}

// ListByOwner owner 的 key
// @Summary 列出 owner 的未刪除 key
// @Tags Admin-Owner
// @Security BearerAuth
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Param tier query string false "free / paid"
// @Success 200 {array} dto.KeyResponseDto
// @Router /admin/owners/{ownerId}/keys [get]
func (h *KeyHandler) ListByOwner(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	tier := core.KeyTier(strings.ToLower(c.Query("tier")))
	if tier != "" && !validate.IsValidKeyTier(string(tier)) {
		response.AbortWithError(c, cErr.BadRequestParams("tier must be free or paid"))
		return
	}
	records, err := h.keyService.ListByOwner(ctx, ownerID, tier)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.NewKeyResponses(records, nowMs()))
}

// ===== bot：以 owner 身分操作 =====

// ClaimFree 領 free key
// @Summary 代使用者領取 free key（每人上限 5 把）
// @Tags Bot
// @Security BotToken
// @Accept json
// @Produce json
// @Param body body dto.CreateFreeKeyDto true "owner"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 409 {object} response.Response
// @Router /api/bot/keys/free [post]
func (h *KeyHandler) ClaimFree(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.CreateFreeKeyDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	record, err := h.keyService.ClaimFree(ctx, req.OwnerID, c.ClientIP(), req.ProviderLabel)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, dto.NewKeyResponse(record, nowMs()))
}

// ListOwned owner 自己的 key
// @Summary 列出 owner 的 key
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Param tier query string false "free / paid"
// @Success 200 {array} dto.KeyResponseDto
// @Router /api/bot/owners/{ownerId}/keys [get]
func (h *KeyHandler) ListOwned(c *gin.Context) {
	h.ListByOwner(c)
}

// DeleteOwned owner 刪除自己的 key
// @Summary 刪除 owner 自己的 key
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Param token path string true "Key token"
// @Success 200 {object} dto.DeleteKeyResponseDto
// @Failure 403 {object} response.Response
// @Router /api/bot/owners/{ownerId}/keys/{token} [delete]
func (h *KeyHandler) DeleteOwned(c *gin.Context) {
	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	h.delete(c, ownerID)
}

// RenewOwned owner 續期自己的 key
// @Summary 續期 owner 自己的 key
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Param token path string true "Key token"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 403 {object} response.Response
// @Router /api/bot/owners/{ownerId}/keys/{token}/renew [post]
func (h *KeyHandler) RenewOwned(c *gin.Context) {
	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	h.renew(c, ownerID)
}

// ResetOwned owner 重設自己 key 的綁定
// @Summary 重設 owner 自己 key 的綁定
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Param token path string true "Key token"
// @Success 200 {object} dto.KeyResponseDto
// @Failure 403 {object} response.Response
// @Router /api/bot/owners/{ownerId}/keys/{token}/reset-binding [post]
func (h *KeyHandler) ResetOwned(c *gin.Context) {
	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	h.resetBinding(c, ownerID)
}

func (h *KeyHandler) renew(c *gin.Context, ownerID string) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	record, err := h.keyService.Renew(ctx, token, ownerID, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.NewKeyResponse(record, nowMs()))
}

func (h *KeyHandler) delete(c *gin.Context, ownerID string) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	updated, err := h.keyService.Delete(ctx, token, ownerID, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.DeleteKeyResponseDto{Token: token, Deleted: true, Updated: updated})
}

func (h *KeyHandler) resetBinding(c *gin.Context, ownerID string) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	token, err := validate.PathParam(c, "token")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	record, err := h.keyService.ResetBinding(ctx, token, ownerID, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.NewKeyResponse(record, nowMs()))
}
