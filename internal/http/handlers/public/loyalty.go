package public

import (
	"strconv"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyLoyalty returns the shopper's points balance.
func (h *Handler) GetMyLoyalty(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.LoyaltyService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch loyalty account failed", err)
		return
	}
	response.Success(c, account)
}

// GetMyLoyaltyTransactions pages through the shopper's points ledger.
func (h *Handler) GetMyLoyaltyTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.LoyaltyService.ListTransactions(repository.LoyaltyTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list loyalty transactions failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}
