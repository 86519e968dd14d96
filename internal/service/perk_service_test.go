package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPerkServiceTest(t *testing.T) (*PerkService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "perk_service_test")
	return NewPerkService(repository.NewPerkRepository(db)), db
}

func money(t *testing.T, value string) models.Money {
	t.Helper()
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}

func moneyPtr(t *testing.T, value string) *models.Money {
	t.Helper()
	m := money(t, value)
	return &m
}

func TestPerkServiceEligibilityNilThresholdsNeverBlock(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	perk, err := svc.Create(PerkCreateInput{
		StoreID: 1,
		Title:   "Open-door discount",
		Type:    constants.PerkTypeDiscount,
		Value:   money(t, "10"),
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	eligible, err := svc.CheckEligibility(PerkEligibilitySnapshot{
		StoreID:   1,
		CartValue: money(t, "0.01"),
	})
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != perk.ID {
		t.Fatalf("expected the perk to qualify, got: %+v", eligible)
	}
}

func TestPerkServiceEligibilityDefinedTriggersAllPass(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	minParticipants := 3
	if _, err := svc.Create(PerkCreateInput{
		StoreID:          2,
		Title:            "Group haul bonus",
		Type:             constants.PerkTypeBonus,
		Value:            money(t, "15"),
		MinCartValue:     moneyPtr(t, "100"),
		MinParticipants:  &minParticipants,
		NewCustomersOnly: true,
	}); err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	cases := []struct {
		name     string
		snapshot PerkEligibilitySnapshot
		want     int
	}{
		{
			name: "all triggers pass",
			snapshot: PerkEligibilitySnapshot{
				StoreID: 2, CartValue: money(t, "120"), Participants: 4, NewCustomer: true,
			},
			want: 1,
		},
		{
			name: "cart below threshold",
			snapshot: PerkEligibilitySnapshot{
				StoreID: 2, CartValue: money(t, "80"), Participants: 4, NewCustomer: true,
			},
			want: 0,
		},
		{
			name: "too few participants",
			snapshot: PerkEligibilitySnapshot{
				StoreID: 2, CartValue: money(t, "120"), Participants: 2, NewCustomer: true,
			},
			want: 0,
		},
		{
			name: "returning customer",
			snapshot: PerkEligibilitySnapshot{
				StoreID: 2, CartValue: money(t, "120"), Participants: 4, NewCustomer: false,
			},
			want: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eligible, err := svc.CheckEligibility(tc.snapshot)
			if err != nil {
				t.Fatalf("check eligibility failed: %v", err)
			}
			if len(eligible) != tc.want {
				t.Fatalf("expected %d perks, got %d", tc.want, len(eligible))
			}
		})
	}
}

func TestPerkServiceEligibilityWeeklySchedule(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Create(PerkCreateInput{
		StoreID:       3,
		Title:         "Tuesday freebie",
		Type:          constants.PerkTypeFreebie,
		Value:         money(t, "5"),
		ScheduleType:  constants.PerkScheduleWeekly,
		ScheduleStart: &start,
		ScheduleDays:  []int{2}, // Tuesday
	}); err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	tuesday := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	if tuesday.Weekday() != time.Tuesday {
		t.Fatalf("fixture is not a Tuesday")
	}
	eligible, err := svc.CheckEligibility(PerkEligibilitySnapshot{StoreID: 3, At: tuesday})
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if len(eligible) != 1 {
		t.Fatalf("expected Tuesday match, got %d perks", len(eligible))
	}

	wednesday := tuesday.AddDate(0, 0, 1)
	eligible, err = svc.CheckEligibility(PerkEligibilitySnapshot{StoreID: 3, At: wednesday})
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if len(eligible) != 0 {
		t.Fatalf("expected no match on Wednesday, got %d perks", len(eligible))
	}

	beforeStart := time.Date(2025, 12, 30, 12, 0, 0, 0, time.UTC) // a Tuesday before the start
	eligible, err = svc.CheckEligibility(PerkEligibilitySnapshot{StoreID: 3, At: beforeStart})
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if len(eligible) != 0 {
		t.Fatalf("expected no match before schedule start, got %d perks", len(eligible))
	}
}

func TestPerkServiceEligibilityInsertionOrder(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	first, err := svc.Create(PerkCreateInput{StoreID: 4, Title: "First", Type: constants.PerkTypeBonus, Value: money(t, "1")})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}
	second, err := svc.Create(PerkCreateInput{StoreID: 4, Title: "Second", Type: constants.PerkTypeBonus, Value: money(t, "2")})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	eligible, err := svc.CheckEligibility(PerkEligibilitySnapshot{StoreID: 4})
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if len(eligible) != 2 || eligible[0].ID != first.ID || eligible[1].ID != second.ID {
		t.Fatalf("expected insertion order, got: %+v", eligible)
	}
}

func TestPerkServiceApplyDiscount(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	perk, err := svc.Create(PerkCreateInput{
		StoreID: 5,
		Title:   "10 percent off",
		Type:    constants.PerkTypeDiscount,
		Value:   money(t, "10"),
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	result, err := svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "200")})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.AdjustedValue.String() != "180.00" {
		t.Fatalf("expected 180.00, got: %s", result.AdjustedValue.String())
	}
	if result.Redemption == nil || result.Redemption.PerkID != perk.ID {
		t.Fatalf("expected redemption record, got: %+v", result.Redemption)
	}
}

func TestPerkServiceApplyFixedValueFloorsAtZero(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	perk, err := svc.Create(PerkCreateInput{
		StoreID: 6,
		Title:   "Big bonus",
		Type:    constants.PerkTypeBonus,
		Value:   money(t, "25"),
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	result, err := svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "10")})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.AdjustedValue.String() != "0.00" {
		t.Fatalf("expected floor at zero, got: %s", result.AdjustedValue.String())
	}
}

func TestPerkServiceApplyUsageLimit(t *testing.T) {
	svc, db := setupPerkServiceTest(t)
	perk, err := svc.Create(PerkCreateInput{
		StoreID:    7,
		Title:      "One shot",
		Type:       constants.PerkTypeBonus,
		Value:      money(t, "5"),
		UsageLimit: 1,
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	if _, err := svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "50")}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	_, err = svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "50")})
	if !errors.Is(err, ErrPerkExhausted) {
		t.Fatalf("expected exhausted, got: %v", err)
	}

	var stored models.RetailerPerk
	if err := db.First(&stored, perk.ID).Error; err != nil {
		t.Fatalf("fetch perk failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got: %d", stored.UsedCount)
	}
}

func TestPerkServiceApplyConcurrentUsageLimit(t *testing.T) {
	svc, db := setupPerkServiceTest(t)
	limitToSingleConn(t, db)
	perk, err := svc.Create(PerkCreateInput{
		StoreID:    9,
		Title:      "Last one standing",
		Type:       constants.PerkTypeBonus,
		Value:      money(t, "5"),
		UsageLimit: 1,
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "50")})
		}(i)
	}
	wg.Wait()

	redeemed := 0
	for _, err := range errs {
		switch {
		case err == nil:
			redeemed++
		case errors.Is(err, ErrPerkExhausted):
		default:
			t.Fatalf("unexpected error from concurrent apply: %v", err)
		}
	}
	if redeemed != 1 {
		t.Fatalf("expected exactly 1 redemption, got %d", redeemed)
	}

	var stored models.RetailerPerk
	if err := db.First(&stored, perk.ID).Error; err != nil {
		t.Fatalf("fetch perk failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got: %d", stored.UsedCount)
	}
}

func TestPerkServiceApplyRechecksCartThreshold(t *testing.T) {
	svc, _ := setupPerkServiceTest(t)
	perk, err := svc.Create(PerkCreateInput{
		StoreID:      8,
		Title:        "Spend to save",
		Type:         constants.PerkTypeDiscount,
		Value:        money(t, "20"),
		MinCartValue: moneyPtr(t, "100"),
	})
	if err != nil {
		t.Fatalf("create perk failed: %v", err)
	}

	_, err = svc.Apply(PerkApplyInput{PerkID: perk.ID, CartValue: money(t, "40")})
	if !errors.Is(err, ErrPerkNotEligible) {
		t.Fatalf("expected not eligible, got: %v", err)
	}
}
