package service

import (
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PerkService evaluates and applies retailer perks.
type PerkService struct {
	perkRepo repository.PerkRepository
}

// PerkEligibilitySnapshot is the trip state a perk is judged against.
type PerkEligibilitySnapshot struct {
	StoreID      uint
	CartValue    models.Money
	Participants int
	NewCustomer  bool
	At           time.Time
}

// PerkCreateInput creates or updates a perk definition.
type PerkCreateInput struct {
	StoreID          uint
	Title            string
	Type             string
	Value            models.Money
	ScheduleType     string
	ScheduleStart    *time.Time
	ScheduleDays     []int
	MinCartValue     *models.Money
	MinParticipants  *int
	NewCustomersOnly bool
	UsageLimit       int
}

// PerkApplyInput consumes one perk use against a cart.
type PerkApplyInput struct {
	PerkID    uint
	TripID    *uint
	CartValue models.Money
}

// PerkApplyResult is the outcome of a consumed perk.
type PerkApplyResult struct {
	Perk          *models.RetailerPerk   `json:"perk"`
	CartValue     models.Money           `json:"cart_value"`
	AdjustedValue models.Money           `json:"adjusted_value"`
	Redemption    *models.PerkRedemption `json:"redemption"`
}

// NewPerkService creates the perk service.
func NewPerkService(perkRepo repository.PerkRepository) *PerkService {
	return &PerkService{perkRepo: perkRepo}
}

// CheckEligibility returns the store's qualifying perks in insertion
// order. A perk qualifies iff every defined trigger passes; undefined
// (nil) thresholds never block.
func (s *PerkService) CheckEligibility(snapshot PerkEligibilitySnapshot) ([]models.RetailerPerk, error) {
	if snapshot.StoreID == 0 {
		return []models.RetailerPerk{}, nil
	}
	if snapshot.At.IsZero() {
		snapshot.At = time.Now()
	}
	perks, err := s.perkRepo.ListActiveByStore(snapshot.StoreID)
	if err != nil {
		return nil, err
	}
	eligible := make([]models.RetailerPerk, 0, len(perks))
	for _, perk := range perks {
		if perkQualifies(&perk, snapshot) {
			eligible = append(eligible, perk)
		}
	}
	return eligible, nil
}

// Apply rechecks the cart threshold, consumes one use through the
// conditional counter update, and records the redemption. Exhaustion is
// detected by the counter, not a prior read, so concurrent applications
// cannot oversell the limit.
func (s *PerkService) Apply(input PerkApplyInput) (*PerkApplyResult, error) {
	perk, err := s.perkRepo.GetByID(input.PerkID)
	if err != nil {
		return nil, err
	}
	if perk == nil {
		return nil, ErrPerkNotFound
	}
	if !perk.IsActive {
		return nil, ErrPerkInactive
	}
	cart := input.CartValue.Decimal.Round(2)
	if perk.MinCartValue != nil && cart.LessThan(perk.MinCartValue.Decimal) {
		return nil, ErrPerkNotEligible
	}

	adjusted := adjustCartValue(perk, cart)

	var redemption *models.PerkRedemption
	if err := s.perkRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.perkRepo.WithTx(tx)
		consumed, err := repo.ConsumeUse(perk.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrPerkExhausted
		}
		redemption = &models.PerkRedemption{
			PerkID:        perk.ID,
			TripID:        input.TripID,
			CartValue:     models.NewMoneyFromDecimal(cart),
			AdjustedValue: models.NewMoneyFromDecimal(adjusted),
			CreatedAt:     time.Now(),
		}
		return repo.CreateRedemption(redemption)
	}); err != nil {
		return nil, err
	}
	perk.UsedCount++

	logger.Infow("perk_applied",
		"perk_id", perk.ID,
		"store_id", perk.StoreID,
		"cart_value", cart.StringFixed(2),
		"adjusted_value", adjusted.StringFixed(2),
	)
	return &PerkApplyResult{
		Perk:          perk,
		CartValue:     models.NewMoneyFromDecimal(cart),
		AdjustedValue: models.NewMoneyFromDecimal(adjusted),
		Redemption:    redemption,
	}, nil
}

// Create defines a new perk.
func (s *PerkService) Create(input PerkCreateInput) (*models.RetailerPerk, error) {
	if err := validatePerkInput(&input); err != nil {
		return nil, err
	}
	now := time.Now()
	perk := &models.RetailerPerk{
		StoreID:          input.StoreID,
		Title:            strings.TrimSpace(input.Title),
		Type:             input.Type,
		Value:            input.Value,
		ScheduleType:     input.ScheduleType,
		ScheduleStart:    input.ScheduleStart,
		ScheduleDays:     models.IntArray(input.ScheduleDays),
		MinCartValue:     input.MinCartValue,
		MinParticipants:  input.MinParticipants,
		NewCustomersOnly: input.NewCustomersOnly,
		UsageLimit:       input.UsageLimit,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.perkRepo.Create(perk); err != nil {
		return nil, err
	}
	return perk, nil
}

// Update rewrites a perk definition; the usage counter is untouched.
func (s *PerkService) Update(id uint, input PerkCreateInput) (*models.RetailerPerk, error) {
	perk, err := s.perkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if perk == nil {
		return nil, ErrPerkNotFound
	}
	if err := validatePerkInput(&input); err != nil {
		return nil, err
	}
	perk.StoreID = input.StoreID
	perk.Title = strings.TrimSpace(input.Title)
	perk.Type = input.Type
	perk.Value = input.Value
	perk.ScheduleType = input.ScheduleType
	perk.ScheduleStart = input.ScheduleStart
	perk.ScheduleDays = models.IntArray(input.ScheduleDays)
	perk.MinCartValue = input.MinCartValue
	perk.MinParticipants = input.MinParticipants
	perk.NewCustomersOnly = input.NewCustomersOnly
	perk.UsageLimit = input.UsageLimit
	perk.UpdatedAt = time.Now()
	if err := s.perkRepo.Update(perk); err != nil {
		return nil, err
	}
	return perk, nil
}

// SetActive toggles a perk on or off.
func (s *PerkService) SetActive(id uint, active bool) (*models.RetailerPerk, error) {
	perk, err := s.perkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if perk == nil {
		return nil, ErrPerkNotFound
	}
	perk.IsActive = active
	perk.UpdatedAt = time.Now()
	if err := s.perkRepo.Update(perk); err != nil {
		return nil, err
	}
	return perk, nil
}

// Delete removes a perk.
func (s *PerkService) Delete(id uint) error {
	perk, err := s.perkRepo.GetByID(id)
	if err != nil {
		return err
	}
	if perk == nil {
		return ErrPerkNotFound
	}
	return s.perkRepo.Delete(id)
}

// GetByID fetches a perk.
func (s *PerkService) GetByID(id uint) (*models.RetailerPerk, error) {
	perk, err := s.perkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if perk == nil {
		return nil, ErrPerkNotFound
	}
	return perk, nil
}

// List pages through perks.
func (s *PerkService) List(filter repository.PerkListFilter) ([]models.RetailerPerk, int64, error) {
	return s.perkRepo.List(filter)
}

func perkQualifies(perk *models.RetailerPerk, snapshot PerkEligibilitySnapshot) bool {
	if !perk.IsActive {
		return false
	}
	if perk.UsageLimit > constants.PerkUsageUnlimited && perk.UsedCount >= perk.UsageLimit {
		return false
	}
	if !scheduleMatches(perk, snapshot.At) {
		return false
	}
	if perk.MinCartValue != nil && snapshot.CartValue.Decimal.LessThan(perk.MinCartValue.Decimal) {
		return false
	}
	if perk.MinParticipants != nil && snapshot.Participants < *perk.MinParticipants {
		return false
	}
	if perk.NewCustomersOnly && !snapshot.NewCustomer {
		return false
	}
	return true
}

func scheduleMatches(perk *models.RetailerPerk, at time.Time) bool {
	switch perk.ScheduleType {
	case constants.PerkScheduleAlways, "":
		return true
	case constants.PerkScheduleWeekly:
		if perk.ScheduleStart != nil && at.Before(*perk.ScheduleStart) {
			return false
		}
		if len(perk.ScheduleDays) == 0 {
			return true
		}
		weekday := int(at.Weekday())
		for _, day := range perk.ScheduleDays {
			if day == weekday {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// adjustCartValue applies the perk to the cart: discount is a percent
// off, bonus and freebie subtract a fixed amount. The result never goes
// below zero.
func adjustCartValue(perk *models.RetailerPerk, cart decimal.Decimal) decimal.Decimal {
	var adjusted decimal.Decimal
	switch perk.Type {
	case constants.PerkTypeDiscount:
		factor := decimal.NewFromInt(1).Sub(perk.Value.Decimal.Div(decimal.NewFromInt(100)))
		adjusted = cart.Mul(factor)
	case constants.PerkTypeBonus, constants.PerkTypeFreebie:
		adjusted = cart.Sub(perk.Value.Decimal)
	default:
		adjusted = cart
	}
	adjusted = adjusted.Round(2)
	if adjusted.IsNegative() {
		return decimal.Zero
	}
	return adjusted
}

func validatePerkInput(input *PerkCreateInput) error {
	if input.StoreID == 0 || strings.TrimSpace(input.Title) == "" {
		return ErrPerkInvalidInput
	}
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	switch input.Type {
	case constants.PerkTypeDiscount, constants.PerkTypeBonus, constants.PerkTypeFreebie:
	default:
		return ErrPerkInvalidInput
	}
	input.ScheduleType = strings.ToLower(strings.TrimSpace(input.ScheduleType))
	if input.ScheduleType == "" {
		input.ScheduleType = constants.PerkScheduleAlways
	}
	switch input.ScheduleType {
	case constants.PerkScheduleAlways, constants.PerkScheduleWeekly:
	default:
		return ErrPerkInvalidInput
	}
	if input.Value.Decimal.IsNegative() || input.UsageLimit < 0 {
		return ErrPerkInvalidInput
	}
	for _, day := range input.ScheduleDays {
		if day < 0 || day > 6 {
			return ErrPerkInvalidInput
		}
	}
	return nil
}
