package admin

import (
	"errors"
	"strconv"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/repository"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminReturns pages through return requests.
func (h *Handler) GetAdminReturns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	requests, total, err := h.ReturnService.ListAdmin(repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		OrderID:  uint(orderID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list returns failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}

// GetAdminReturn fetches one return request.
func (h *Handler) GetAdminReturn(c *gin.Context) {
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
	response.Success(c, request)
}

// ReturnDecisionRequest is an admin decision on a pending return.
type ReturnDecisionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// DecideReturn approves or denies a pending return request.
func (h *Handler) DecideReturn(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	returnID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || returnID == 0 {
		respondError(c, response.CodeBadRequest, "invalid return id", nil)
		return
	}
	var req ReturnDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	request, err := h.ReturnService.Decide(service.ReturnDecideInput{
		ReturnID: uint(returnID),
		Status:   req.Status,
		Note:     req.Note,
		AdminID:  adminID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "return not found", nil)
		case errors.Is(err, service.ErrReturnInvalidStatus):
			respondError(c, response.CodeBadRequest, "invalid decision status", nil)
		case errors.Is(err, service.ErrReturnInvalidTransition):
			respondError(c, response.CodeConflict, "return already decided", nil)
		default:
			respondError(c, response.CodeInternal, "decide return failed", err)
		}
		return
	}
	response.Success(c, request)
}
