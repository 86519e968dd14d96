package admin

import (
	"errors"
	"strconv"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/repository"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminRefunds pages through refund transactions.
func (h *Handler) GetAdminRefunds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	returnID, _ := strconv.ParseUint(c.Query("return_id"), 10, 64)

	refunds, total, err := h.RefundService.ListAdmin(repository.RefundListFilter{
		Page:     page,
		PageSize: pageSize,
		ReturnID: uint(returnID),
		Method:   c.Query("method"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list refunds failed", err)
		return
	}
	response.SuccessWithPage(c, refunds, response.BuildPagination(page, pageSize, total))
}

// GetAdminRefund fetches one refund transaction.
func (h *Handler) GetAdminRefund(c *gin.Context) {
	refundID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || refundID == 0 {
		respondError(c, response.CodeBadRequest, "invalid refund id", nil)
		return
	}
	refund, err := h.RefundService.GetByID(uint(refundID))
	if err != nil {
		if errors.Is(err, service.ErrRefundNotFound) {
			respondError(c, response.CodeNotFound, "refund not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch refund failed", err)
		return
	}
	response.Success(c, refund)
}
