package handler

import (
	"keyhub/internal/pkg/response"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"keyhub/utils/validate"

	"github.com/gin-gonic/gin"
)

type OwnerHandler struct {
	trace  *telemetry.Trace
	owners *service.OwnerService
}

func NewOwnerHandler(trace *telemetry.Trace, owners *service.OwnerService) *OwnerHandler {
	return &OwnerHandler{trace: trace, owners: owners}
}

// RepairIndex 修復 owner index
// @Summary 依紀錄與執行引用重建 owner index
// @Tags Admin-Owner
// @Security BearerAuth
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Success 200 {object} service.IndexRepairReport
// @Failure 503 {object} response.Response
// @Router /admin/owners/{ownerId}/repair-index [post]
func (h *OwnerHandler) RepairIndex(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	report, err := h.owners.RepairIndex(ctx, ownerID)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, report)
}

// Purge 清除 owner 所有資料
// @Summary 硬刪除 owner 的所有 key、index 與執行紀錄（冪等）
// @Tags Admin-Owner
// @Security BearerAuth
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Success 200 {object} service.PurgeReport
// @Failure 503 {object} response.Response
// @Router /admin/owners/{ownerId} [delete]
func (h *OwnerHandler) Purge(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	report, err := h.owners.Purge(ctx, ownerID, actorOf(c))
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, report)
}

// PurgeHistory 清除紀錄
// @Summary 列出 owner 的清除稽核紀錄
// @Tags Admin-Owner
// @Security BearerAuth
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Success 200 {array} model.PurgeAudit
// @Router /admin/owners/{ownerId}/purges [get]
func (h *OwnerHandler) PurgeHistory(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var cause error
	defer func() { end(cause) }()

	ownerID, err := validate.PathParam(c, "ownerId")
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	audits, err := h.owners.PurgeHistory(ctx, ownerID)
	if err != nil {
		cause = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, audits)
}
