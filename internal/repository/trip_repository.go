package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"

	"gorm.io/gorm"
)

// TripRepository is the shopping trip data access interface.
type TripRepository interface {
	CreateTrip(trip *models.ShoppingTrip) error
	UpdateTrip(trip *models.ShoppingTrip) error
	GetByID(id uint) (*models.ShoppingTrip, error)
	GetByCode(tripCode string) (*models.ShoppingTrip, error)
	GetByCodeWithDetails(tripCode string) (*models.ShoppingTrip, error)
	List(filter TripListFilter) ([]models.ShoppingTrip, int64, error)
	CreateInvites(invites []models.TripInvite) error
	GetInvite(tripID uint, guestEmail string) (*models.TripInvite, error)
	GetResponse(tripID uint, guestEmail string) (*models.TripResponse, error)
	CreateResponse(response *models.TripResponse) error
	UpdateResponse(response *models.TripResponse) error
	CountAccepted(tripID uint) (int64, error)
	CloseExpired(before time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTripRepository
}

// GormTripRepository is the GORM implementation.
type GormTripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates the trip repository.
func NewTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormTripRepository) WithTx(tx *gorm.DB) *GormTripRepository {
	if tx == nil {
		return r
	}
	return &GormTripRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *GormTripRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateTrip inserts a trip.
func (r *GormTripRepository) CreateTrip(trip *models.ShoppingTrip) error {
	return r.db.Create(trip).Error
}

// UpdateTrip saves a trip.
func (r *GormTripRepository) UpdateTrip(trip *models.ShoppingTrip) error {
	return r.db.Save(trip).Error
}

// GetByID fetches a trip by primary key.
func (r *GormTripRepository) GetByID(id uint) (*models.ShoppingTrip, error) {
	if id == 0 {
		return nil, nil
	}
	var trip models.ShoppingTrip
	if err := r.db.First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// GetByCode fetches a trip by its shareable code.
func (r *GormTripRepository) GetByCode(tripCode string) (*models.ShoppingTrip, error) {
	tripCode = strings.TrimSpace(tripCode)
	if tripCode == "" {
		return nil, nil
	}
	var trip models.ShoppingTrip
	if err := r.db.Where("trip_code = ?", tripCode).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// GetByCodeWithDetails fetches a trip with invites and responses preloaded.
func (r *GormTripRepository) GetByCodeWithDetails(tripCode string) (*models.ShoppingTrip, error) {
	tripCode = strings.TrimSpace(tripCode)
	if tripCode == "" {
		return nil, nil
	}
	var trip models.ShoppingTrip
	if err := r.db.Preload("Invites").Preload("Responses").
		Where("trip_code = ?", tripCode).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// List pages through trips.
func (r *GormTripRepository) List(filter TripListFilter) ([]models.ShoppingTrip, int64, error) {
	query := r.db.Model(&models.ShoppingTrip{})
	if filter.HostUserID != 0 {
		query = query.Where("host_user_id = ?", filter.HostUserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var trips []models.ShoppingTrip
	if err := query.Order("id desc").Find(&trips).Error; err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// CreateInvites inserts the invite list in one batch.
func (r *GormTripRepository) CreateInvites(invites []models.TripInvite) error {
	if len(invites) == 0 {
		return nil
	}
	return r.db.Create(&invites).Error
}

// GetInvite fetches one invite by trip and email.
func (r *GormTripRepository) GetInvite(tripID uint, guestEmail string) (*models.TripInvite, error) {
	guestEmail = strings.TrimSpace(guestEmail)
	if tripID == 0 || guestEmail == "" {
		return nil, nil
	}
	var invite models.TripInvite
	if err := r.db.Where("trip_id = ? AND guest_email = ?", tripID, guestEmail).
		First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

// GetResponse fetches one guest response by trip and email.
func (r *GormTripRepository) GetResponse(tripID uint, guestEmail string) (*models.TripResponse, error) {
	guestEmail = strings.TrimSpace(guestEmail)
	if tripID == 0 || guestEmail == "" {
		return nil, nil
	}
	var response models.TripResponse
	if err := r.db.Where("trip_id = ? AND guest_email = ?", tripID, guestEmail).
		First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// CreateResponse inserts a guest response.
func (r *GormTripRepository) CreateResponse(response *models.TripResponse) error {
	return r.db.Create(response).Error
}

// UpdateResponse saves a guest response.
func (r *GormTripRepository) UpdateResponse(response *models.TripResponse) error {
	return r.db.Save(response).Error
}

// CloseExpired flips open trips whose date has passed to closed.
func (r *GormTripRepository) CloseExpired(before time.Time) (int64, error) {
	result := r.db.Model(&models.ShoppingTrip{}).
		Where("status = ? AND date < ?", constants.TripStatusOpen, before).
		Updates(map[string]interface{}{
			"status":     constants.TripStatusClosed,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CountAccepted counts accepted responses for a trip.
func (r *GormTripRepository) CountAccepted(tripID uint) (int64, error) {
	if tripID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.TripResponse{}).
		Where("trip_id = ? AND response = ?", tripID, constants.TripResponseAccept).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
