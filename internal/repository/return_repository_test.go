package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReturnRepositoryTest(t *testing.T) (*GormReturnRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:return_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ReturnRequest{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewReturnRepository(db), db
}

func newReturnRow(userID, orderID, itemID uint, status string) models.ReturnRequest {
	return models.ReturnRequest{
		UserID:         userID,
		OrderID:        orderID,
		OrderItemID:    itemID,
		ProductName:    "Trail Daypack",
		OriginalAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("59.50")),
		Status:         status,
		SubmittedAt:    time.Now(),
	}
}

func TestReturnRepositoryGetActiveByOrderItem(t *testing.T) {
	repo, db := setupReturnRepositoryTest(t)

	denied := newReturnRow(1, 10, 100, constants.ReturnStatusDenied)
	if err := db.Create(&denied).Error; err != nil {
		t.Fatalf("create denied request failed: %v", err)
	}

	// a denied request must not block a resubmission
	got, err := repo.GetActiveByOrderItem(1, 10, 100)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if got != nil {
		t.Fatalf("denied request should not count as active, got id %d", got.ID)
	}

	pending := newReturnRow(1, 10, 100, constants.ReturnStatusPending)
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("create pending request failed: %v", err)
	}

	got, err = repo.GetActiveByOrderItem(1, 10, 100)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if got == nil || got.ID != pending.ID {
		t.Fatalf("pending request should be active")
	}

	// a different shopper's item is not affected
	got, err = repo.GetActiveByOrderItem(2, 10, 100)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if got != nil {
		t.Fatalf("other user should have no active request")
	}
}

func TestReturnRepositoryListActiveItemIDsByOrders(t *testing.T) {
	repo, db := setupReturnRepositoryTest(t)

	rows := []models.ReturnRequest{
		newReturnRow(1, 10, 100, constants.ReturnStatusPending),
		newReturnRow(1, 10, 101, constants.ReturnStatusDenied),
		newReturnRow(1, 11, 110, constants.ReturnStatusRefunded),
		newReturnRow(1, 99, 990, constants.ReturnStatusPending),
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create request failed: %v", err)
		}
	}

	itemIDs, err := repo.ListActiveItemIDsByOrders([]uint{10, 11})
	if err != nil {
		t.Fatalf("list active item ids failed: %v", err)
	}
	want := map[uint]bool{100: true, 110: true}
	if len(itemIDs) != len(want) {
		t.Fatalf("item ids want %d got %d (%v)", len(want), len(itemIDs), itemIDs)
	}
	for _, id := range itemIDs {
		if !want[id] {
			t.Fatalf("unexpected item id %d", id)
		}
	}

	empty, err := repo.ListActiveItemIDsByOrders(nil)
	if err != nil {
		t.Fatalf("list with no orders failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("no orders should yield no item ids, got %v", empty)
	}
}

func TestReturnRepositoryListFilters(t *testing.T) {
	repo, db := setupReturnRepositoryTest(t)

	for i := 0; i < 5; i++ {
		row := newReturnRow(1, uint(20+i), uint(200+i), constants.ReturnStatusPending)
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create request failed: %v", err)
		}
	}
	other := newReturnRow(2, 30, 300, constants.ReturnStatusApproved)
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	requests, total, err := repo.List(ReturnListFilter{UserID: 1, Page: 1, PageSize: 3})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(requests) != 3 {
		t.Fatalf("page size want 3 got %d", len(requests))
	}
	// newest first
	if requests[0].ID <= requests[1].ID {
		t.Fatalf("list should be ordered id desc")
	}

	requests, total, err = repo.List(ReturnListFilter{Status: constants.ReturnStatusApproved, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || len(requests) != 1 || requests[0].UserID != 2 {
		t.Fatalf("status filter should match the approved request")
	}
}
