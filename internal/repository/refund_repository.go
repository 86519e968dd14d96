package repository

import (
	"errors"

	"github.com/spiral-platform/spiral-api/internal/models"

	"gorm.io/gorm"
)

// RefundRepository is the refund transaction data access interface.
type RefundRepository interface {
	Create(txn *models.RefundTransaction) error
	Update(txn *models.RefundTransaction) error
	GetByID(id uint) (*models.RefundTransaction, error)
	GetByReturnID(returnID uint) (*models.RefundTransaction, error)
	List(filter RefundListFilter) ([]models.RefundTransaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormRefundRepository
}

// GormRefundRepository is the GORM implementation.
type GormRefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates the refund repository.
func NewRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormRefundRepository) WithTx(tx *gorm.DB) *GormRefundRepository {
	if tx == nil {
		return r
	}
	return &GormRefundRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormRefundRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create inserts a refund transaction.
func (r *GormRefundRepository) Create(txn *models.RefundTransaction) error {
	return r.db.Create(txn).Error
}

// Update saves a refund transaction.
func (r *GormRefundRepository) Update(txn *models.RefundTransaction) error {
	return r.db.Save(txn).Error
}

// GetByID fetches a refund transaction by ID.
func (r *GormRefundRepository) GetByID(id uint) (*models.RefundTransaction, error) {
	var txn models.RefundTransaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByReturnID fetches the refund for a return, if any.
func (r *GormRefundRepository) GetByReturnID(returnID uint) (*models.RefundTransaction, error) {
	if returnID == 0 {
		return nil, nil
	}
	var txn models.RefundTransaction
	if err := r.db.Where("return_id = ?", returnID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// List pages through refund transactions.
func (r *GormRefundRepository) List(filter RefundListFilter) ([]models.RefundTransaction, int64, error) {
	query := r.db.Model(&models.RefundTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ReturnID != 0 {
		query = query.Where("return_id = ?", filter.ReturnID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
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

	var txns []models.RefundTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
