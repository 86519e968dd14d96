package service

import (
	"errors"
	"testing"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLoyaltyServiceTest(t *testing.T) (*LoyaltyService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "loyalty_service_test")
	return NewLoyaltyService(repository.NewLoyaltyRepository(db), 5), db
}

func TestLoyaltyServicePointsForAmount(t *testing.T) {
	svc, _ := setupLoyaltyServiceTest(t)
	cases := []struct {
		amount string
		want   int64
	}{
		{"50.00", 250},
		{"10.39", 51},
		{"0.19", 0},
		{"0.20", 1},
		{"99.99", 499},
	}
	for _, tc := range cases {
		got := svc.PointsForAmount(models.NewMoneyFromDecimal(decimal.RequireFromString(tc.amount)))
		if got != tc.want {
			t.Fatalf("points for %s: expected %d, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestLoyaltyServiceGetAccountAutoCreates(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)
	createTestShopper(t, db, 31)

	account, err := svc.GetAccount(31)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Balance != 0 {
		t.Fatalf("expected empty account, got balance %d", account.Balance)
	}

	again, err := svc.GetAccount(31)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != account.ID {
		t.Fatalf("expected the same account row")
	}
}

func TestLoyaltyServiceAdminAdjust(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)
	createTestShopper(t, db, 32)

	account, txn, err := svc.AdminAdjust(LoyaltyAdjustInput{UserID: 32, Delta: 100, Remark: "goodwill"})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if account.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", account.Balance)
	}
	if txn.Direction != constants.LoyaltyTxnDirectionIn || txn.Points != 100 {
		t.Fatalf("unexpected ledger entry: %+v", txn)
	}

	account, txn, err = svc.AdminAdjust(LoyaltyAdjustInput{UserID: 32, Delta: -40})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if account.Balance != 60 {
		t.Fatalf("expected balance 60, got %d", account.Balance)
	}
	if txn.Direction != constants.LoyaltyTxnDirectionOut || txn.Points != 40 {
		t.Fatalf("unexpected ledger entry: %+v", txn)
	}
}

func TestLoyaltyServiceAdminAdjustNeverNegative(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)
	createTestShopper(t, db, 33)

	if _, _, err := svc.AdminAdjust(LoyaltyAdjustInput{UserID: 33, Delta: 10}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	_, _, err := svc.AdminAdjust(LoyaltyAdjustInput{UserID: 33, Delta: -20})
	if !errors.Is(err, ErrLoyaltyInsufficient) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}
}
