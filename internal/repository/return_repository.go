package repository

import (
	"errors"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReturnRepository is the return request data access interface.
type ReturnRepository interface {
	Create(request *models.ReturnRequest) error
	Update(request *models.ReturnRequest) error
	GetByID(id uint) (*models.ReturnRequest, error)
	GetByIDForUpdate(id uint) (*models.ReturnRequest, error)
	GetActiveByOrderItem(userID, orderID, orderItemID uint) (*models.ReturnRequest, error)
	ListActiveItemIDsByOrders(orderIDs []uint) ([]uint, error)
	List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormReturnRepository
}

// GormReturnRepository is the GORM implementation.
type GormReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates the return repository.
func NewReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormReturnRepository) WithTx(tx *gorm.DB) *GormReturnRepository {
	if tx == nil {
		return r
	}
	return &GormReturnRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormReturnRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create inserts a return request.
func (r *GormReturnRepository) Create(request *models.ReturnRequest) error {
	return r.db.Create(request).Error
}

// Update saves a return request.
func (r *GormReturnRepository) Update(request *models.ReturnRequest) error {
	return r.db.Save(request).Error
}

// GetByID fetches a return request by ID.
func (r *GormReturnRepository) GetByID(id uint) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByIDForUpdate fetches a return request with a row lock.
func (r *GormReturnRepository) GetByIDForUpdate(id uint) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetActiveByOrderItem fetches the non-denied request for one purchased
// item, if any. Denied requests do not block a resubmission.
func (r *GormReturnRepository) GetActiveByOrderItem(userID, orderID, orderItemID uint) (*models.ReturnRequest, error) {
	if userID == 0 || orderID == 0 || orderItemID == 0 {
		return nil, nil
	}
	var request models.ReturnRequest
	if err := r.db.
		Where("user_id = ? AND order_id = ? AND order_item_id = ? AND status <> ?",
			userID, orderID, orderItemID, constants.ReturnStatusDenied).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ListActiveItemIDsByOrders returns the order item IDs already under a
// non-denied return for the given orders.
func (r *GormReturnRepository) ListActiveItemIDsByOrders(orderIDs []uint) ([]uint, error) {
	if len(orderIDs) == 0 {
		return []uint{}, nil
	}
	var itemIDs []uint
	if err := r.db.Model(&models.ReturnRequest{}).
		Where("order_id IN ? AND status <> ?", orderIDs, constants.ReturnStatusDenied).
		Pluck("order_item_id", &itemIDs).Error; err != nil {
		return nil, err
	}
	return itemIDs, nil
}

// List pages through return requests.
func (r *GormReturnRepository) List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	query := r.db.Model(&models.ReturnRequest{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.ReturnRequest
	if err := query.Order("id desc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
