package admin

import (
	"errors"
	"strconv"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/repository"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminLoyaltyAccount fetches a shopper's points balance.
func (h *Handler) GetAdminLoyaltyAccount(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}
	account, err := h.LoyaltyService.GetAccount(uint(userID))
	if err != nil {
		respondError(c, response.CodeInternal, "fetch loyalty account failed", err)
		return
	}
	response.Success(c, account)
}

// GetAdminLoyaltyTransactions pages through the points ledger.
func (h *Handler) GetAdminLoyaltyTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	transactions, total, err := h.LoyaltyService.ListTransactions(repository.LoyaltyTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    uint(userID),
		Type:      c.Query("type"),
		Direction: c.Query("direction"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list loyalty transactions failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// LoyaltyAdjustRequest is a manual points correction.
type LoyaltyAdjustRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Delta  int64  `json:"delta" binding:"required"`
	Remark string `json:"remark"`
}

// AdjustLoyalty credits or deducts points on a shopper's account.
func (h *Handler) AdjustLoyalty(c *gin.Context) {
	var req LoyaltyAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	account, txn, err := h.LoyaltyService.AdminAdjust(service.LoyaltyAdjustInput{
		UserID: req.UserID,
		Delta:  req.Delta,
		Remark: req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoyaltyInvalidPoints):
			respondError(c, response.CodeBadRequest, "invalid points delta", nil)
		case errors.Is(err, service.ErrLoyaltyInsufficient):
			respondError(c, response.CodeBadRequest, "balance cannot go negative", nil)
		default:
			respondError(c, response.CodeInternal, "adjust loyalty failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"account":     account,
		"transaction": txn,
	})
}
