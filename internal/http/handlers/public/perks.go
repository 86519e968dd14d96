package public

import (
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PerkEligibilityRequest is a cart snapshot to evaluate against a
// store's perks.
type PerkEligibilityRequest struct {
	StoreID      uint   `json:"store_id" binding:"required"`
	CartValue    string `json:"cart_value"`
	Participants int    `json:"participants"`
	NewCustomer  bool   `json:"new_customer"`
	At           string `json:"at"`
}

// CheckPerkEligibility lists the store's perks the snapshot qualifies for.
func (h *Handler) CheckPerkEligibility(c *gin.Context) {
	var req PerkEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	cartValue := decimal.Zero
	if strings.TrimSpace(req.CartValue) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(req.CartValue))
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid cart value", err)
			return
		}
		cartValue = parsed
	}
	at := time.Time{}
	if strings.TrimSpace(req.At) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.At))
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid timestamp", err)
			return
		}
		at = parsed
	}

	perks, err := h.PerkService.CheckEligibility(service.PerkEligibilitySnapshot{
		StoreID:      req.StoreID,
		CartValue:    models.NewMoneyFromDecimal(cartValue),
		Participants: req.Participants,
		NewCustomer:  req.NewCustomer,
		At:           at,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "check eligibility failed", err)
		return
	}
	response.Success(c, perks)
}

// PerkApplyRequest consumes one use of a perk against a cart.
type PerkApplyRequest struct {
	PerkID    uint   `json:"perk_id" binding:"required"`
	CartValue string `json:"cart_value" binding:"required"`
	TripID    *uint  `json:"trip_id"`
}

// ApplyPerk redeems a perk and returns the adjusted cart value.
func (h *Handler) ApplyPerk(c *gin.Context) {
	var req PerkApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	cartValue, err := decimal.NewFromString(strings.TrimSpace(req.CartValue))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid cart value", err)
		return
	}

	result, err := h.PerkService.Apply(service.PerkApplyInput{
		PerkID:    req.PerkID,
		TripID:    req.TripID,
		CartValue: models.NewMoneyFromDecimal(cartValue),
	})
	if err != nil {
		respondWithMappedError(c, err, perkApplyErrorRules, response.CodeInternal, "apply perk failed")
		return
	}
	response.Success(c, result)
}
