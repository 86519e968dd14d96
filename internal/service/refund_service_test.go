package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRefundServiceTest(t *testing.T) (*RefundService, *ReturnService, *LoyaltyService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "refund_service_test")
	returnRepo := repository.NewReturnRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	loyaltySvc := NewLoyaltyService(loyaltyRepo, 5)
	returnSvc := NewReturnService(returnRepo, orderRepo, 30, "100.00")
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	refundSvc := NewRefundService(refundRepo, returnRepo, loyaltySvc, queueClient)
	return refundSvc, returnSvc, loyaltySvc, db
}

func createApprovedReturn(t *testing.T, returnSvc *ReturnService, db *gorm.DB, userID uint, amount decimal.Decimal) *models.ReturnRequest {
	t.Helper()
	createTestShopper(t, db, userID)
	order := createCompletedTestOrder(t, db, userID, time.Now().AddDate(0, 0, -2), amount)
	request, err := returnSvc.Create(ReturnCreateInput{
		UserID:      userID,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if request.Status == constants.ReturnStatusPending {
		request, err = returnSvc.Decide(ReturnDecideInput{
			ReturnID: request.ID,
			Status:   constants.ReturnStatusApproved,
			AdminID:  1,
		})
		if err != nil {
			t.Fatalf("approve return failed: %v", err)
		}
	}
	return request
}

func TestRefundServiceProcessExternalPayment(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	request := createApprovedReturn(t, returnSvc, db, 11, decimal.NewFromInt(80))

	txn, err := refundSvc.Process(request.ID, constants.RefundMethodExternalPayment)
	if err != nil {
		t.Fatalf("process refund failed: %v", err)
	}
	if txn.Status != constants.RefundStatusCompleted {
		t.Fatalf("expected completed refund, got: %s", txn.Status)
	}
	if !strings.HasPrefix(txn.ProviderRef, "EXT-") {
		t.Fatalf("expected synthetic provider ref, got: %s", txn.ProviderRef)
	}
	if txn.CompletedAt == nil {
		t.Fatalf("expected completion time")
	}

	refreshed, err := returnSvc.GetByID(request.ID)
	if err != nil {
		t.Fatalf("fetch return failed: %v", err)
	}
	if refreshed.Status != constants.ReturnStatusRefunded || refreshed.RefundedAt == nil {
		t.Fatalf("expected refunded return, got: %+v", refreshed)
	}
}

func TestRefundServiceProcessLoyaltyCredit(t *testing.T) {
	refundSvc, returnSvc, loyaltySvc, db := setupRefundServiceTest(t)
	request := createApprovedReturn(t, returnSvc, db, 12, decimal.NewFromInt(50))

	txn, err := refundSvc.Process(request.ID, constants.RefundMethodLoyaltyCredit)
	if err != nil {
		t.Fatalf("process refund failed: %v", err)
	}
	if txn.PointsAwarded != 250 {
		t.Fatalf("expected 250 points for $50, got: %d", txn.PointsAwarded)
	}

	account, err := loyaltySvc.GetAccount(12)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Balance != 250 {
		t.Fatalf("expected balance 250, got: %d", account.Balance)
	}

	entries, _, err := loyaltySvc.ListTransactions(repository.LoyaltyTransactionListFilter{UserID: 12})
	if err != nil {
		t.Fatalf("list ledger failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != constants.LoyaltyTxnTypeRefundCredit {
		t.Fatalf("unexpected ledger entries: %+v", entries)
	}
	if entries[0].BalanceBefore != 0 || entries[0].BalanceAfter != 250 {
		t.Fatalf("unexpected ledger balances: %+v", entries[0])
	}
}

func TestRefundServiceProcessFractionalPoints(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	request := createApprovedReturn(t, returnSvc, db, 13, decimal.RequireFromString("10.39"))

	txn, err := refundSvc.Process(request.ID, constants.RefundMethodLoyaltyCredit)
	if err != nil {
		t.Fatalf("process refund failed: %v", err)
	}
	// 10.39 × 5 = 51.95, floored
	if txn.PointsAwarded != 51 {
		t.Fatalf("expected 51 points, got: %d", txn.PointsAwarded)
	}
}

func TestRefundServiceProcessRequiresApproval(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	createTestShopper(t, db, 14)
	order := createCompletedTestOrder(t, db, 14, time.Now().AddDate(0, 0, -2), decimal.NewFromInt(300))
	request, err := returnSvc.Create(ReturnCreateInput{
		UserID:      14,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	_, err = refundSvc.Process(request.ID, constants.RefundMethodExternalPayment)
	if !errors.Is(err, ErrReturnNotApproved) {
		t.Fatalf("expected not approved, got: %v", err)
	}
}

func TestRefundServiceProcessTwiceFails(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	request := createApprovedReturn(t, returnSvc, db, 15, decimal.NewFromInt(60))

	if _, err := refundSvc.Process(request.ID, constants.RefundMethodExternalPayment); err != nil {
		t.Fatalf("first process failed: %v", err)
	}
	// The return is refunded now, so the second attempt fails before it
	// ever reaches the refund row.
	_, err := refundSvc.Process(request.ID, constants.RefundMethodExternalPayment)
	if !errors.Is(err, ErrReturnNotApproved) {
		t.Fatalf("expected not approved on second attempt, got: %v", err)
	}
}

func TestRefundServiceProcessConcurrentSingleSuccess(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	limitToSingleConn(t, db)
	request := createApprovedReturn(t, returnSvc, db, 17, decimal.NewFromInt(60))

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = refundSvc.Process(request.ID, constants.RefundMethodExternalPayment)
		}(i)
	}
	wg.Wait()

	completed := 0
	for _, err := range errs {
		switch {
		case err == nil:
			completed++
		case errors.Is(err, ErrReturnNotApproved), errors.Is(err, ErrRefundAlreadyExists):
			// the losers see the return already moved past approved
		default:
			t.Fatalf("unexpected error from concurrent process: %v", err)
		}
	}
	if completed != 1 {
		t.Fatalf("expected exactly 1 successful refund, got %d", completed)
	}

	var rows int64
	if err := db.Model(&models.RefundTransaction{}).
		Where("return_id = ?", request.ID).
		Count(&rows).Error; err != nil {
		t.Fatalf("count refunds failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 refund row, got %d", rows)
	}
}

func TestRefundServiceInvalidMethod(t *testing.T) {
	refundSvc, returnSvc, _, db := setupRefundServiceTest(t)
	request := createApprovedReturn(t, returnSvc, db, 16, decimal.NewFromInt(60))

	_, err := refundSvc.Process(request.ID, "store_credit")
	if !errors.Is(err, ErrRefundInvalidMethod) {
		t.Fatalf("expected invalid method, got: %v", err)
	}
}
