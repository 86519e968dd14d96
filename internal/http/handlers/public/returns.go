package public

import (
	"errors"
	"strconv"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ReturnCreateRequest submits a return for one purchased item.
type ReturnCreateRequest struct {
	OrderID     uint   `json:"order_id" binding:"required"`
	OrderItemID uint   `json:"order_item_id" binding:"required"`
	Reason      string `json:"reason"`
}

// CreateReturn submits a return request. Requests below the
// auto-approval threshold come back already approved.
func (h *Handler) CreateReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ReturnCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	request, err := h.ReturnService.Create(service.ReturnCreateInput{
		UserID:      uid,
		OrderID:     req.OrderID,
		OrderItemID: req.OrderItemID,
		Reason:      req.Reason,
	})
	if err != nil {
		respondWithMappedError(c, err, returnCreateErrorRules, response.CodeInternal, "create return failed")
		return
	}
	response.Success(c, request)
}

// ListMyReturns pages through the shopper's return requests.
func (h *Handler) ListMyReturns(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	requests, total, err := h.ReturnService.ListByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "list returns failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}

// GetMyReturn fetches one of the shopper's return requests.
func (h *Handler) GetMyReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || returnID == 0 {
		respondError(c, response.CodeBadRequest, "invalid return id", nil)
		return
	}
	request, err := h.ReturnService.GetByID(uint(returnID))
	if err != nil {
		if errors.Is(err, service.ErrReturnNotFound) {
			respondError(c, response.CodeNotFound, "return not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch return failed", err)
		return
	}
	if request.UserID != uid {
		respondError(c, response.CodeNotFound, "return not found", nil)
		return
	}
	response.Success(c, request)
}

// ListEligibleOrders returns completed orders inside the return window
// with the items that still have no active return.
func (h *Handler) ListEligibleOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	eligible, err := h.ReturnService.ListEligibleOrders(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "list eligible orders failed", err)
		return
	}
	response.Success(c, eligible)
}

// RefundRequest picks the refund method for an approved return.
type RefundRequest struct {
	Method string `json:"method" binding:"required"`
}

// RequestRefund triggers the refund for an approved return owned by
// the shopper.
func (h *Handler) RequestRefund(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || returnID == 0 {
		respondError(c, response.CodeBadRequest, "invalid return id", nil)
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	request, err := h.ReturnService.GetByID(uint(returnID))
	if err != nil {
		if errors.Is(err, service.ErrReturnNotFound) {
			respondError(c, response.CodeNotFound, "return not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch return failed", err)
		return
	}
	if request.UserID != uid {
		respondError(c, response.CodeNotFound, "return not found", nil)
		return
	}

	txn, err := h.RefundService.Process(uint(returnID), req.Method)
	if err != nil {
		respondWithMappedError(c, err, refundProcessErrorRules, response.CodeInternal, "process refund failed")
		return
	}
	response.Success(c, txn)
}

// GetMyRefund fetches the refund attached to one of the shopper's returns.
func (h *Handler) GetMyRefund(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || returnID == 0 {
		respondError(c, response.CodeBadRequest, "invalid return id", nil)
		return
	}
	request, err := h.ReturnService.GetByID(uint(returnID))
	if err != nil {
		if errors.Is(err, service.ErrReturnNotFound) {
			respondError(c, response.CodeNotFound, "return not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch return failed", err)
		return
	}
	if request.UserID != uid {
		respondError(c, response.CodeNotFound, "return not found", nil)
		return
	}
	txn, err := h.RefundService.GetByReturnID(uint(returnID))
	if err != nil {
		if errors.Is(err, service.ErrRefundNotFound) {
			respondError(c, response.CodeNotFound, "refund not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch refund failed", err)
		return
	}
	response.Success(c, txn)
}
