package repository

import (
	"errors"
	"strings"

	"github.com/spiral-platform/spiral-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository is the loyalty account and ledger access interface.
type LoyaltyRepository interface {
	GetAccountByUserID(userID uint) (*models.LoyaltyAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.LoyaltyAccount, error)
	CreateAccount(account *models.LoyaltyAccount) error
	UpdateAccount(account *models.LoyaltyAccount) error
	CreateTransaction(txn *models.LoyaltyTransaction) error
	GetTransactionByReference(reference string) (*models.LoyaltyTransaction, error)
	ListTransactions(filter LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository is the GORM implementation.
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository creates the loyalty repository.
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormLoyaltyRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByUserID fetches a shopper's loyalty account.
func (r *GormLoyaltyRepository) GetAccountByUserID(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByUserIDForUpdate fetches the account with a row lock.
func (r *GormLoyaltyRepository) GetAccountByUserIDForUpdate(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.LoyaltyAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount inserts a loyalty account.
func (r *GormLoyaltyRepository) CreateAccount(account *models.LoyaltyAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount saves a loyalty account.
func (r *GormLoyaltyRepository) UpdateAccount(account *models.LoyaltyAccount) error {
	return r.db.Save(account).Error
}

// CreateTransaction inserts a ledger entry.
func (r *GormLoyaltyRepository) CreateTransaction(txn *models.LoyaltyTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference fetches a ledger entry by reference.
func (r *GormLoyaltyRepository) GetTransactionByReference(reference string) (*models.LoyaltyTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.LoyaltyTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions pages through the ledger.
func (r *GormLoyaltyRepository) ListTransactions(filter LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error) {
	query := r.db.Model(&models.LoyaltyTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
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

	var txns []models.LoyaltyTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
