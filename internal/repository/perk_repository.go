package repository

import (
	"errors"

	"github.com/spiral-platform/spiral-api/internal/models"

	"gorm.io/gorm"
)

// PerkRepository is the retailer perk data access interface.
type PerkRepository interface {
	Create(perk *models.RetailerPerk) error
	Update(perk *models.RetailerPerk) error
	Delete(id uint) error
	GetByID(id uint) (*models.RetailerPerk, error)
	ListActiveByStore(storeID uint) ([]models.RetailerPerk, error)
	List(filter PerkListFilter) ([]models.RetailerPerk, int64, error)
	ConsumeUse(id uint) (bool, error)
	CreateRedemption(redemption *models.PerkRedemption) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPerkRepository
}

// GormPerkRepository is the GORM implementation.
type GormPerkRepository struct {
	db *gorm.DB
}

// NewPerkRepository creates the perk repository.
func NewPerkRepository(db *gorm.DB) *GormPerkRepository {
	return &GormPerkRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPerkRepository) WithTx(tx *gorm.DB) *GormPerkRepository {
	if tx == nil {
		return r
	}
	return &GormPerkRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormPerkRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create inserts a perk.
func (r *GormPerkRepository) Create(perk *models.RetailerPerk) error {
	return r.db.Create(perk).Error
}

// Update saves a perk.
func (r *GormPerkRepository) Update(perk *models.RetailerPerk) error {
	return r.db.Save(perk).Error
}

// Delete soft-deletes a perk.
func (r *GormPerkRepository) Delete(id uint) error {
	return r.db.Delete(&models.RetailerPerk{}, id).Error
}

// GetByID fetches a perk by ID.
func (r *GormPerkRepository) GetByID(id uint) (*models.RetailerPerk, error) {
	var perk models.RetailerPerk
	if err := r.db.First(&perk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perk, nil
}

// ListActiveByStore lists a store's active perks in insertion order.
func (r *GormPerkRepository) ListActiveByStore(storeID uint) ([]models.RetailerPerk, error) {
	if storeID == 0 {
		return []models.RetailerPerk{}, nil
	}
	var perks []models.RetailerPerk
	if err := r.db.Where("store_id = ? AND is_active = ?", storeID, true).
		Order("id asc").
		Find(&perks).Error; err != nil {
		return nil, err
	}
	return perks, nil
}

// List pages through perks.
func (r *GormPerkRepository) List(filter PerkListFilter) ([]models.RetailerPerk, int64, error) {
	query := r.db.Model(&models.RetailerPerk{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var perks []models.RetailerPerk
	if err := query.Order("id asc").Find(&perks).Error; err != nil {
		return nil, 0, err
	}
	return perks, total, nil
}

// ConsumeUse bumps used_count by one iff the limit is not exhausted.
// The conditional UPDATE keeps concurrent applications from overselling;
// the caller checks the returned flag.
func (r *GormPerkRepository) ConsumeUse(id uint) (bool, error) {
	result := r.db.Model(&models.RetailerPerk{}).
		Where("id = ?", id).
		Where("usage_limit = 0 OR used_count < usage_limit").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateRedemption inserts a redemption record.
func (r *GormPerkRepository) CreateRedemption(redemption *models.PerkRedemption) error {
	return r.db.Create(redemption).Error
}
