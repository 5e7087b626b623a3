package handler

import (
	"keyhub/internal/core"
	"keyhub/internal/dto"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"

	"github.com/gin-gonic/gin"
)

type GiveawayHandler struct {
	trace     *telemetry.Trace
	giveaways *service.GiveawayService
}

func NewGiveawayHandler(trace *telemetry.Trace, giveaways *service.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{trace: trace, giveaways: giveaways}
}

// Create 建立抽獎
// @Summary 建立抽獎（獎品為 paid key）
// @Tags Bot
// @Security BotToken
// @Accept json
// @Produce json
// @Param body body dto.CreateGiveawayDto true "抽獎資訊"
// @Success 200 {object} model.Giveaway
// @Failure 400 {object} response.Response
// @Router /api/bot/giveaways [post]
func (h *GiveawayHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	var req dto.CreateGiveawayDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	giveaway, err := h.giveaways.Create(ctx, req.ToInput())
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, giveaway)
}

// Get 取得抽獎
// @Summary 取得抽獎與參加者、得獎者
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param id path string true "Giveaway ID"
// @Success 200 {object} model.Giveaway
// @Failure 404 {object} response.Response
// @Router /api/bot/giveaways/{id} [get]
func (h *GiveawayHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	giveaway, err := h.giveaways.Get(ctx, id)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, giveaway)
}

// AttachMessage 回填公告訊息
// @Summary 回填 Discord 公告訊息 ID
// @Tags Bot
// @Security BotToken
// @Accept json
// @Produce json
// @Param id path string true "Giveaway ID"
// @Param body body dto.AttachGiveawayMessageDto true "訊息 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/bot/giveaways/{id}/message [put]
func (h *GiveawayHandler) AttachMessage(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	var req dto.AttachGiveawayMessageDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	if err := h.giveaways.AttachMessage(ctx, id, req.MessageID); err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "messageId": req.MessageID})
}

// Join 參加抽獎
// @Summary 參加抽獎；重複參加會更新參加者資料
// @Tags Bot
// @Security BotToken
// @Accept json
// @Produce json
// @Param id path string true "Giveaway ID"
// @Param body body dto.JoinGiveawayDto true "參加者"
// @Success 200 {object} model.Giveaway
// @Failure 409 {object} response.Response
// @Router /api/bot/giveaways/{id}/join [post]
func (h *GiveawayHandler) Join(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	var req dto.JoinGiveawayDto
	if bindErr, respErr := validate.BindAndValidate(c, &req); bindErr != nil {
		response.AbortWithError(c, respErr)
		return
	}
	giveaway, err := h.giveaways.Join(ctx, id, req.ToParticipant())
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, giveaway)
}

// End 結束抽獎
// @Summary 結束抽獎、抽出得獎者並發放 paid key（冪等）
// @Tags Bot
// @Security BotToken
// @Produce json
// @Param id path string true "Giveaway ID"
// @Success 200 {object} dto.EndGiveawayResponseDto
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/bot/giveaways/{id}/end [post]
func (h *GiveawayHandler) End(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	giveaway, newlyEnded, err := h.giveaways.End(ctx, id, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, dto.EndGiveawayResponseDto{Giveaway: giveaway, NewlyEnded: newlyEnded})
}

// List 抽獎列表
// @Summary 抽獎列表（新到舊，每頁 50 筆）
// @Tags Admin-Giveaway
// @Security BearerAuth
// @Produce json
// @Param status query string false "running / ended / cancelled"
// @Param page query int false "頁碼（0 起算）"
// @Success 200 {array} model.Giveaway
// @Router /admin/giveaways [get]
func (h *GiveawayHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	status := c.Query("status")
	if status != "" && !validate.IsValidGiveawayStatus(status) {
		response.AbortWithError(c, cErr.BadRequestParams("unknown giveaway status"))
		return
	}
	page, err := validate.GetInt64Query(c, "page", 0)
	if err != nil || page < 0 {
		response.AbortWithError(c, cErr.BadRequestParams("page must be a non-negative integer"))
		return
	}
	giveaways, err := h.giveaways.List(ctx, core.GiveawayStatus(status), page)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, giveaways)
}

// Cancel 取消抽獎
// @Summary 取消進行中的抽獎（不發 key）
// @Tags Admin-Giveaway
// @Security BearerAuth
// @Produce json
// @Param id path string true "Giveaway ID"
// @Success 200 {object} model.Giveaway
// @Failure 409 {object} response.Response
// @Router /admin/giveaways/{id}/cancel [post]
func (h *GiveawayHandler) Cancel(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	giveaway, err := h.giveaways.Cancel(ctx, id)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, giveaway)
}

// Delete 刪除抽獎
// @Summary 刪除抽獎紀錄（已發出的 key 不受影響）
// @Tags Admin-Giveaway
// @Security BearerAuth
// @Produce json
// @Param id path string true "Giveaway ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/giveaways/{id} [delete]
func (h *GiveawayHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	id, err := validate.PathParam(c, "id")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	deleted, err := h.giveaways.Delete(ctx, id)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	if !deleted {
		response.AbortWithError(c, cErr.NotFound("giveaway not found"))
		return
	}
	response.Success(c, gin.H{"id": id, "deleted": true})
}
