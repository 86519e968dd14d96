package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoyaltyService manages SPIRAL point accounts and the ledger.
type LoyaltyService struct {
	loyaltyRepo     repository.LoyaltyRepository
	pointsPerDollar int64
}

// LoyaltyCreditInput is a transaction-scoped credit.
type LoyaltyCreditInput struct {
	UserID    uint
	Points    int64
	TxnType   string
	RefundID  *uint
	TripID    *uint
	Reference string
	Remark    string
}

// LoyaltyAdjustInput is an admin balance adjustment.
type LoyaltyAdjustInput struct {
	UserID uint
	Delta  int64
	Remark string
}

// NewLoyaltyService creates the loyalty service.
func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository, pointsPerDollar int) *LoyaltyService {
	if pointsPerDollar <= 0 {
		pointsPerDollar = 5
	}
	return &LoyaltyService{
		loyaltyRepo:     loyaltyRepo,
		pointsPerDollar: int64(pointsPerDollar),
	}
}

// PointsForAmount converts a money amount to points: floor(amount × rate).
func (s *LoyaltyService) PointsForAmount(amount models.Money) int64 {
	points := amount.Decimal.Mul(decimal.NewFromInt(s.pointsPerDollar)).Floor()
	return points.IntPart()
}

// GetAccount fetches a shopper's account, creating it on first touch.
func (s *LoyaltyService) GetAccount(userID uint) (*models.LoyaltyAccount, error) {
	if userID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	return s.getOrCreateAccount(userID)
}

// ListTransactions pages through a shopper's ledger.
func (s *LoyaltyService) ListTransactions(filter repository.LoyaltyTransactionListFilter) ([]models.LoyaltyTransaction, int64, error) {
	return s.loyaltyRepo.ListTransactions(filter)
}

// CreditTx credits points inside the caller's transaction. The credit is
// idempotent on Reference: an existing entry with the same reference is
// returned untouched.
func (s *LoyaltyService) CreditTx(tx *gorm.DB, input LoyaltyCreditInput) (*models.LoyaltyTransaction, error) {
	if input.UserID == 0 {
		return nil, ErrLoyaltyAccountNotFound
	}
	if input.Points <= 0 {
		return nil, ErrLoyaltyInvalidPoints
	}
	now := time.Now()
	repo := s.loyaltyRepo.WithTx(tx)

	if reference := strings.TrimSpace(input.Reference); reference != "" {
		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}
	before := account.Balance
	after := before + input.Points
	account.Balance = after
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, err
	}

	txn := &models.LoyaltyTransaction{
		UserID:        input.UserID,
		RefundID:      input.RefundID,
		TripID:        input.TripID,
		Type:          input.TxnType,
		Direction:     constants.LoyaltyTxnDirectionIn,
		Points:        input.Points,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     strings.TrimSpace(input.Reference),
		Remark:        strings.TrimSpace(input.Remark),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// AdminAdjust moves a shopper's balance by delta, refusing to take the
// balance below zero.
func (s *LoyaltyService) AdminAdjust(input LoyaltyAdjustInput) (*models.LoyaltyAccount, *models.LoyaltyTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrLoyaltyAccountNotFound
	}
	if input.Delta == 0 {
		return nil, nil, ErrLoyaltyInvalidPoints
	}

	var accountResult *models.LoyaltyAccount
	var txnResult *models.LoyaltyTransaction
	if err := s.loyaltyRepo.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		repo := s.loyaltyRepo.WithTx(tx)
		account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
		if err != nil {
			return err
		}
		before := account.Balance
		after := before + input.Delta
		if after < 0 {
			return ErrLoyaltyInsufficient
		}
		account.Balance = after
		account.UpdatedAt = now
		if err := repo.UpdateAccount(account); err != nil {
			return err
		}

		direction := constants.LoyaltyTxnDirectionIn
		points := input.Delta
		if points < 0 {
			direction = constants.LoyaltyTxnDirectionOut
			points = -points
		}
		txn := &models.LoyaltyTransaction{
			UserID:        input.UserID,
			Type:          constants.LoyaltyTxnTypeAdminAdjust,
			Direction:     direction,
			Points:        points,
			BalanceBefore: before,
			BalanceAfter:  after,
			Reference:     buildLoyaltyReference("admin_adjust", input.UserID),
			Remark:        strings.TrimSpace(input.Remark),
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return err
		}
		accountResult = account
		txnResult = txn
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return accountResult, txnResult, nil
}

func (s *LoyaltyService) getOrCreateAccount(userID uint) (*models.LoyaltyAccount, error) {
	account, err := s.loyaltyRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.LoyaltyAccount{
		UserID:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.loyaltyRepo.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *LoyaltyService) ensureAccountForUpdate(repo repository.LoyaltyRepository, userID uint, now time.Time) (*models.LoyaltyAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.LoyaltyAccount{
		UserID:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		return nil, err
	}
	return repo.GetAccountByUserIDForUpdate(userID)
}

func buildLoyaltyReference(kind string, id uint) string {
	return fmt.Sprintf("loyalty:%s:%d:%d", kind, id, time.Now().UnixNano())
}
