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

// returnTransitions is the only legal status movement. Everything not in
// the table is rejected; denied and refunded are terminal.
var returnTransitions = map[string][]string{
	constants.ReturnStatusPending:  {constants.ReturnStatusApproved, constants.ReturnStatusDenied},
	constants.ReturnStatusApproved: {constants.ReturnStatusRefunded},
}

func canTransitionReturn(from, to string) bool {
	for _, allowed := range returnTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReturnService manages the return request lifecycle.
type ReturnService struct {
	returnRepo           repository.ReturnRepository
	orderRepo            repository.OrderRepository
	windowDays           int
	autoApproveThreshold decimal.Decimal
}

// ReturnCreateInput is a shopper's return submission.
type ReturnCreateInput struct {
	UserID      uint
	OrderID     uint
	OrderItemID uint
	Reason      string
}

// ReturnDecideInput is an admin decision on a pending request.
type ReturnDecideInput struct {
	ReturnID uint
	Status   string
	Note     string
	AdminID  uint
}

// EligibleOrder is a completed order with the items still open to return.
type EligibleOrder struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// NewReturnService creates the return service.
func NewReturnService(
	returnRepo repository.ReturnRepository,
	orderRepo repository.OrderRepository,
	windowDays int,
	autoApproveThreshold string,
) *ReturnService {
	if windowDays <= 0 {
		windowDays = 30
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(autoApproveThreshold))
	if err != nil || threshold.IsNegative() {
		threshold = decimal.NewFromInt(100)
	}
	return &ReturnService{
		returnRepo:           returnRepo,
		orderRepo:            orderRepo,
		windowDays:           windowDays,
		autoApproveThreshold: threshold,
	}
}

// windowCutoff is the earliest completion time still inside the window.
func (s *ReturnService) windowCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.windowDays)
}

// Create submits a return request. Requests under the threshold are
// approved on the spot. The order row is locked FOR UPDATE for the
// whole transaction, so two concurrent submissions for the same item
// serialize and the second sees the first insert in the duplicate guard.
func (s *ReturnService) Create(input ReturnCreateInput) (*models.ReturnRequest, error) {
	if input.UserID == 0 || input.OrderID == 0 || input.OrderItemID == 0 {
		return nil, ErrReturnInvalidInput
	}
	now := time.Now()

	var request *models.ReturnRequest
	if err := s.returnRepo.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.UserID != input.UserID {
			return ErrOrderNotOwned
		}
		if order.Status != constants.OrderStatusCompleted || order.CompletedAt == nil {
			return ErrOrderNotCompleted
		}
		if order.CompletedAt.Before(s.windowCutoff(now)) {
			return ErrReturnWindowExpired
		}

		item, err := orders.GetItemByID(input.OrderItemID)
		if err != nil {
			return err
		}
		if item == nil || item.OrderID != input.OrderID {
			return ErrOrderItemNotFound
		}

		repo := s.returnRepo.WithTx(tx)
		existing, err := repo.GetActiveByOrderItem(input.UserID, input.OrderID, input.OrderItemID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrReturnAlreadyRequested
		}

		amount := item.TotalPrice.Decimal.Round(2)
		request = &models.ReturnRequest{
			UserID:         input.UserID,
			OrderID:        input.OrderID,
			OrderItemID:    input.OrderItemID,
			ProductName:    item.ProductName,
			OriginalAmount: models.NewMoneyFromDecimal(amount),
			Status:         constants.ReturnStatusPending,
			Reason:         strings.TrimSpace(input.Reason),
			SubmittedAt:    now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if amount.LessThan(s.autoApproveThreshold) {
			request.Status = constants.ReturnStatusApproved
			request.AutoApproved = true
			request.DecisionAt = &now
		}
		return repo.Create(request)
	}); err != nil {
		return nil, err
	}

	logger.Infow("return_request_created",
		"return_id", request.ID,
		"user_id", request.UserID,
		"order_id", request.OrderID,
		"order_item_id", request.OrderItemID,
		"status", request.Status,
		"auto_approved", request.AutoApproved,
	)
	return request, nil
}

// Decide records an admin's approve/deny on a pending request. The row
// is locked while the transition table is consulted.
func (s *ReturnService) Decide(input ReturnDecideInput) (*models.ReturnRequest, error) {
	target := strings.ToLower(strings.TrimSpace(input.Status))
	if target != constants.ReturnStatusApproved && target != constants.ReturnStatusDenied {
		return nil, ErrReturnInvalidStatus
	}

	var result *models.ReturnRequest
	if err := s.returnRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.returnRepo.WithTx(tx)
		request, err := repo.GetByIDForUpdate(input.ReturnID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrReturnNotFound
		}
		if !canTransitionReturn(request.Status, target) {
			return ErrReturnInvalidTransition
		}
		now := time.Now()
		request.Status = target
		request.DecisionNote = strings.TrimSpace(input.Note)
		request.DecisionAt = &now
		request.UpdatedAt = now
		if input.AdminID != 0 {
			adminID := input.AdminID
			request.AdminID = &adminID
		}
		if err := repo.Update(request); err != nil {
			return err
		}
		result = request
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Infow("return_request_decided",
		"return_id", result.ID,
		"status", result.Status,
		"admin_id", input.AdminID,
	)
	return result, nil
}

// ListEligibleOrders lists a shopper's completed orders still inside the
// window, with items already under a non-denied return filtered out.
// Orders left with no returnable items are dropped.
func (s *ReturnService) ListEligibleOrders(userID uint) ([]EligibleOrder, error) {
	if userID == 0 {
		return []EligibleOrder{}, nil
	}
	orders, err := s.orderRepo.ListCompletedByUserSince(userID, s.windowCutoff(time.Now()))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []EligibleOrder{}, nil
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	blockedItemIDs, err := s.returnRepo.ListActiveItemIDsByOrders(orderIDs)
	if err != nil {
		return nil, err
	}
	blocked := make(map[uint]struct{}, len(blockedItemIDs))
	for _, id := range blockedItemIDs {
		blocked[id] = struct{}{}
	}

	eligible := make([]EligibleOrder, 0, len(orders))
	for _, order := range orders {
		items := make([]models.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			if _, taken := blocked[item.ID]; !taken {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		order.Items = nil
		eligible = append(eligible, EligibleOrder{Order: order, Items: items})
	}
	return eligible, nil
}

// GetByID fetches a single request.
func (s *ReturnService) GetByID(id uint) (*models.ReturnRequest, error) {
	request, err := s.returnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrReturnNotFound
	}
	return request, nil
}

// ListByUser pages through a shopper's own requests.
func (s *ReturnService) ListByUser(userID uint, page, pageSize int) ([]models.ReturnRequest, int64, error) {
	if userID == 0 {
		return []models.ReturnRequest{}, 0, nil
	}
	return s.returnRepo.List(repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// ListAdmin pages through requests with admin filters.
func (s *ReturnService) ListAdmin(filter repository.ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	return s.returnRepo.List(filter)
}
