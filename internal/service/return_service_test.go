package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Order{},
		&models.OrderItem{},
		&models.ReturnRequest{},
		&models.RefundTransaction{},
		&models.LoyaltyAccount{},
		&models.LoyaltyTransaction{},
		&models.RetailerPerk{},
		&models.PerkRedemption{},
		&models.ShoppingTrip{},
		&models.TripInvite{},
		&models.TripResponse{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func createTestShopper(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("shopper_%d@example.com", id),
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func createCompletedTestOrder(t *testing.T, db *gorm.DB, userID uint, completedAt time.Time, itemPrices ...decimal.Decimal) *models.Order {
	t.Helper()
	now := time.Now()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(itemPrices))
	for i, price := range itemPrices {
		total = total.Add(price)
		items = append(items, models.OrderItem{
			ProductName: fmt.Sprintf("Item %d", i+1),
			UnitPrice:   models.NewMoneyFromDecimal(price),
			Quantity:    1,
			TotalPrice:  models.NewMoneyFromDecimal(price),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	order := &models.Order{
		OrderNo:     fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		UserID:      userID,
		StoreID:     1,
		StoreName:   "Corner Market",
		Status:      constants.OrderStatusCompleted,
		Currency:    constants.SiteCurrencyDefault,
		TotalAmount: models.NewMoneyFromDecimal(total),
		CompletedAt: &completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       items,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

// limitToSingleConn pins the pool to one connection, matching the
// production sqlite pool, so concurrent goroutines contend on real
// transactions instead of erroring on sqlite's single writer.
func limitToSingleConn(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
}

func setupReturnServiceTest(t *testing.T) (*ReturnService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "return_service_test")
	returnRepo := repository.NewReturnRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	return NewReturnService(returnRepo, orderRepo, 30, "100.00"), db
}

func TestReturnServiceCreateAutoApprove(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 1)
	order := createCompletedTestOrder(t, db, 1, time.Now().AddDate(0, 0, -5), decimal.NewFromInt(50))

	request, err := svc.Create(ReturnCreateInput{
		UserID:      1,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
		Reason:      "wrong size",
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if request.Status != constants.ReturnStatusApproved || !request.AutoApproved {
		t.Fatalf("expected auto-approved request, got status=%s auto=%v", request.Status, request.AutoApproved)
	}
	if request.DecisionAt == nil {
		t.Fatalf("expected decision time on auto-approval")
	}
}

func TestReturnServiceCreateAboveThresholdPending(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 2)
	order := createCompletedTestOrder(t, db, 2, time.Now().AddDate(0, 0, -1), decimal.NewFromInt(150))

	request, err := svc.Create(ReturnCreateInput{
		UserID:      2,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if request.Status != constants.ReturnStatusPending || request.AutoApproved {
		t.Fatalf("expected pending request, got status=%s auto=%v", request.Status, request.AutoApproved)
	}
}

func TestReturnServiceCreateWindowExpired(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 3)
	order := createCompletedTestOrder(t, db, 3, time.Now().AddDate(0, 0, -45), decimal.NewFromInt(20))

	_, err := svc.Create(ReturnCreateInput{
		UserID:      3,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	})
	if !errors.Is(err, ErrReturnWindowExpired) {
		t.Fatalf("expected window expired, got: %v", err)
	}
}

func TestReturnServiceCreateDuplicateBlocked(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 4)
	order := createCompletedTestOrder(t, db, 4, time.Now().AddDate(0, 0, -2), decimal.NewFromInt(30))

	if _, err := svc.Create(ReturnCreateInput{
		UserID:      4,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ReturnCreateInput{
		UserID:      4,
		OrderID:     order.ID,
		OrderItemID: order.Items[0].ID,
	})
	if !errors.Is(err, ErrReturnAlreadyRequested) {
		t.Fatalf("expected duplicate block, got: %v", err)
	}
}

func TestReturnServiceCreateInvalidInput(t *testing.T) {
	svc, _ := setupReturnServiceTest(t)

	_, err := svc.Create(ReturnCreateInput{})
	if !errors.Is(err, ErrReturnInvalidInput) {
		t.Fatalf("expected invalid input, got: %v", err)
	}
}

func TestReturnServiceCreateConcurrentSubmissions(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	limitToSingleConn(t, db)
	createTestShopper(t, db, 9)
	order := createCompletedTestOrder(t, db, 9, time.Now().AddDate(0, 0, -2), decimal.NewFromInt(30))

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.Create(ReturnCreateInput{
				UserID:      9,
				OrderID:     order.ID,
				OrderItemID: order.Items[0].ID,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrReturnAlreadyRequested):
		default:
			t.Fatalf("unexpected error from concurrent create: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly 1 successful submission, got %d", created)
	}

	var active int64
	if err := db.Model(&models.ReturnRequest{}).
		Where("order_item_id = ? AND status <> ?", order.Items[0].ID, constants.ReturnStatusDenied).
		Count(&active).Error; err != nil {
		t.Fatalf("count returns failed: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected 1 active return row, got %d", active)
	}
}

func TestReturnServiceCreateDeniedAllowsResubmission(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 5)
	order := createCompletedTestOrder(t, db, 5, time.Now().AddDate(0, 0, -2), decimal.NewFromInt(200))

	first, err := svc.Create(ReturnCreateInput{UserID: 5, OrderID: order.ID, OrderItemID: order.Items[0].ID})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Decide(ReturnDecideInput{ReturnID: first.ID, Status: constants.ReturnStatusDenied, AdminID: 1}); err != nil {
		t.Fatalf("deny failed: %v", err)
	}
	if _, err := svc.Create(ReturnCreateInput{UserID: 5, OrderID: order.ID, OrderItemID: order.Items[0].ID}); err != nil {
		t.Fatalf("resubmission after denial failed: %v", err)
	}
}

func TestReturnServiceDecideTransitions(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 6)
	order := createCompletedTestOrder(t, db, 6, time.Now().AddDate(0, 0, -2), decimal.NewFromInt(500))

	request, err := svc.Create(ReturnCreateInput{UserID: 6, OrderID: order.ID, OrderItemID: order.Items[0].ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	decided, err := svc.Decide(ReturnDecideInput{ReturnID: request.ID, Status: constants.ReturnStatusApproved, Note: "ok", AdminID: 7})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if decided.Status != constants.ReturnStatusApproved || decided.AdminID == nil || *decided.AdminID != 7 {
		t.Fatalf("unexpected decision: %+v", decided)
	}

	// approved cannot be re-approved or denied
	if _, err := svc.Decide(ReturnDecideInput{ReturnID: request.ID, Status: constants.ReturnStatusDenied}); !errors.Is(err, ErrReturnInvalidTransition) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}
	// refunded is not an admin decision
	if _, err := svc.Decide(ReturnDecideInput{ReturnID: request.ID, Status: constants.ReturnStatusRefunded}); !errors.Is(err, ErrReturnInvalidStatus) {
		t.Fatalf("expected invalid status, got: %v", err)
	}
}

func TestReturnServiceListEligibleOrders(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	createTestShopper(t, db, 8)
	inWindow := createCompletedTestOrder(t, db, 8, time.Now().AddDate(0, 0, -3), decimal.NewFromInt(40), decimal.NewFromInt(60))
	createCompletedTestOrder(t, db, 8, time.Now().AddDate(0, 0, -60), decimal.NewFromInt(25))

	if _, err := svc.Create(ReturnCreateInput{
		UserID:      8,
		OrderID:     inWindow.ID,
		OrderItemID: inWindow.Items[0].ID,
	}); err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	eligible, err := svc.ListEligibleOrders(8)
	if err != nil {
		t.Fatalf("list eligible failed: %v", err)
	}
	if len(eligible) != 1 {
		t.Fatalf("expected 1 eligible order, got %d", len(eligible))
	}
	if len(eligible[0].Items) != 1 || eligible[0].Items[0].ID != inWindow.Items[1].ID {
		t.Fatalf("expected only the unreturned item, got: %+v", eligible[0].Items)
	}
}
