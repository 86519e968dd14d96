package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/http/response"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"
	"github.com/spiral-platform/spiral-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PerkRequest creates or replaces a perk definition.
type PerkRequest struct {
	StoreID          uint   `json:"store_id" binding:"required"`
	Title            string `json:"title" binding:"required"`
	Type             string `json:"type" binding:"required"`
	Value            string `json:"value" binding:"required"`
	ScheduleType     string `json:"schedule_type"`
	ScheduleStart    string `json:"schedule_start"`
	ScheduleDays     []int  `json:"schedule_days"`
	MinCartValue     string `json:"min_cart_value"`
	MinParticipants  *int   `json:"min_participants"`
	NewCustomersOnly bool   `json:"new_customers_only"`
	UsageLimit       int    `json:"usage_limit"`
}

func (req *PerkRequest) toServiceInput() (service.PerkCreateInput, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(req.Value))
	if err != nil {
		return service.PerkCreateInput{}, err
	}
	input := service.PerkCreateInput{
		StoreID:          req.StoreID,
		Title:            req.Title,
		Type:             req.Type,
		Value:            models.NewMoneyFromDecimal(value),
		ScheduleType:     req.ScheduleType,
		ScheduleDays:     req.ScheduleDays,
		MinParticipants:  req.MinParticipants,
		NewCustomersOnly: req.NewCustomersOnly,
		UsageLimit:       req.UsageLimit,
	}
	if strings.TrimSpace(req.ScheduleStart) != "" {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduleStart))
		if err != nil {
			return service.PerkCreateInput{}, err
		}
		input.ScheduleStart = &start
	}
	if strings.TrimSpace(req.MinCartValue) != "" {
		minCart, err := decimal.NewFromString(strings.TrimSpace(req.MinCartValue))
		if err != nil {
			return service.PerkCreateInput{}, err
		}
		m := models.NewMoneyFromDecimal(minCart)
		input.MinCartValue = &m
	}
	return input, nil
}

// GetAdminPerks pages through perk definitions.
func (h *Handler) GetAdminPerks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)

	filter := repository.PerkListFilter{
		Page:     page,
		PageSize: pageSize,
		StoreID:  uint(storeID),
		Type:     c.Query("type"),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	perks, total, err := h.PerkService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "list perks failed", err)
		return
	}
	response.SuccessWithPage(c, perks, response.BuildPagination(page, pageSize, total))
}

// GetAdminPerk fetches one perk definition.
func (h *Handler) GetAdminPerk(c *gin.Context) {
	perkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || perkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid perk id", nil)
		return
	}
	perk, err := h.PerkService.GetByID(uint(perkID))
	if err != nil {
		if errors.Is(err, service.ErrPerkNotFound) {
			respondError(c, response.CodeNotFound, "perk not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch perk failed", err)
		return
	}
	response.Success(c, perk)
}

// CreateAdminPerk creates a perk definition.
func (h *Handler) CreateAdminPerk(c *gin.Context) {
	var req PerkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid perk payload", err)
		return
	}
	perk, err := h.PerkService.Create(input)
	if err != nil {
		if errors.Is(err, service.ErrPerkInvalidInput) {
			respondError(c, response.CodeBadRequest, "invalid perk definition", nil)
			return
		}
		respondError(c, response.CodeInternal, "create perk failed", err)
		return
	}
	response.Success(c, perk)
}

// UpdateAdminPerk replaces a perk definition.
func (h *Handler) UpdateAdminPerk(c *gin.Context) {
	perkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || perkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid perk id", nil)
		return
	}
	var req PerkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid perk payload", err)
		return
	}
	perk, err := h.PerkService.Update(uint(perkID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPerkNotFound):
			respondError(c, response.CodeNotFound, "perk not found", nil)
		case errors.Is(err, service.ErrPerkInvalidInput):
			respondError(c, response.CodeBadRequest, "invalid perk definition", nil)
		default:
			respondError(c, response.CodeInternal, "update perk failed", err)
		}
		return
	}
	response.Success(c, perk)
}

// PerkActiveRequest toggles a perk on or off.
type PerkActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetAdminPerkActive toggles a perk's active flag.
func (h *Handler) SetAdminPerkActive(c *gin.Context) {
	perkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || perkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid perk id", nil)
		return
	}
	var req PerkActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}
	perk, err := h.PerkService.SetActive(uint(perkID), *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrPerkNotFound) {
			respondError(c, response.CodeNotFound, "perk not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "update perk failed", err)
		return
	}
	response.Success(c, perk)
}

// DeleteAdminPerk removes a perk definition.
func (h *Handler) DeleteAdminPerk(c *gin.Context) {
	perkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || perkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid perk id", nil)
		return
	}
	if err := h.PerkService.Delete(uint(perkID)); err != nil {
		if errors.Is(err, service.ErrPerkNotFound) {
			respondError(c, response.CodeNotFound, "perk not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "delete perk failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
