package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"
	"github.com/spiral-platform/spiral-api/internal/queue"
	"github.com/spiral-platform/spiral-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RefundService turns approved returns into money or point movements.
type RefundService struct {
	refundRepo  repository.RefundRepository
	returnRepo  repository.ReturnRepository
	loyaltySvc  *LoyaltyService
	queueClient *queue.Client
}

// NewRefundService creates the refund service.
func NewRefundService(
	refundRepo repository.RefundRepository,
	returnRepo repository.ReturnRepository,
	loyaltySvc *LoyaltyService,
	queueClient *queue.Client,
) *RefundService {
	return &RefundService{
		refundRepo:  refundRepo,
		returnRepo:  returnRepo,
		loyaltySvc:  loyaltySvc,
		queueClient: queueClient,
	}
}

// Process refunds an approved return. The return row is locked for the
// whole transaction, so a concurrent second call waits, then sees the
// refunded status and fails. Refund row, loyalty writes and the return
// status flip commit together or not at all; a failed provider reversal
// commits only the failed refund row and leaves the return approved.
func (s *RefundService) Process(returnID uint, method string) (*models.RefundTransaction, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method != constants.RefundMethodExternalPayment && method != constants.RefundMethodLoyaltyCredit {
		return nil, ErrRefundInvalidMethod
	}

	var result *models.RefundTransaction
	var providerErr error
	if err := s.refundRepo.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		request, err := returnRepo.GetByIDForUpdate(returnID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrReturnNotFound
		}
		if request.Status != constants.ReturnStatusApproved {
			return ErrReturnNotApproved
		}

		existing, err := refundRepo.GetByReturnID(returnID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status != constants.RefundStatusFailed {
			return ErrRefundAlreadyExists
		}

		now := time.Now()
		txn := existing
		if txn == nil {
			txn = &models.RefundTransaction{
				ReturnID:  returnID,
				UserID:    request.UserID,
				CreatedAt: now,
			}
		}
		txn.Method = method
		txn.Amount = request.OriginalAmount
		txn.Status = constants.RefundStatusPending
		txn.ProviderRef = ""
		txn.PointsAwarded = 0
		txn.FailureReason = ""
		txn.CompletedAt = nil
		txn.UpdatedAt = now

		switch method {
		case constants.RefundMethodExternalPayment:
			providerRef, err := simulateExternalReversal(request.OriginalAmount)
			if err != nil {
				txn.Status = constants.RefundStatusFailed
				txn.FailureReason = err.Error()
				if saveErr := saveRefund(refundRepo, txn, existing != nil); saveErr != nil {
					return saveErr
				}
				result = txn
				providerErr = ErrRefundProviderFailed
				return nil
			}
			txn.ProviderRef = providerRef
		case constants.RefundMethodLoyaltyCredit:
			points := s.loyaltySvc.PointsForAmount(request.OriginalAmount)
			// The ledger entry references the refund row, so the row
			// has to exist before the credit.
			if err := saveRefund(refundRepo, txn, existing != nil); err != nil {
				return err
			}
			existing = txn
			refundID := txn.ID
			if _, err := s.loyaltySvc.CreditTx(tx, LoyaltyCreditInput{
				UserID:    request.UserID,
				Points:    points,
				TxnType:   constants.LoyaltyTxnTypeRefundCredit,
				RefundID:  &refundID,
				Reference: fmt.Sprintf("refund:%d", returnID),
				Remark:    "return refund credited as points",
			}); err != nil {
				return err
			}
			txn.PointsAwarded = points
		}

		txn.Status = constants.RefundStatusCompleted
		txn.CompletedAt = &now
		if err := saveRefund(refundRepo, txn, existing != nil); err != nil {
			return err
		}

		request.Status = constants.ReturnStatusRefunded
		request.RefundedAt = &now
		request.UpdatedAt = now
		if err := returnRepo.Update(request); err != nil {
			return err
		}
		result = txn
		return nil
	}); err != nil {
		return nil, err
	}

	if providerErr != nil {
		logger.Warnw("refund_provider_failed",
			"return_id", returnID,
			"method", method,
			"reason", result.FailureReason,
		)
		return result, providerErr
	}

	logger.Infow("refund_processed",
		"refund_id", result.ID,
		"return_id", returnID,
		"method", method,
		"amount", result.Amount.String(),
		"points_awarded", result.PointsAwarded,
	)
	if err := s.queueClient.EnqueueRefundStatusEmail(queue.RefundStatusEmailPayload{
		RefundID: result.ID,
		Status:   result.Status,
	}); err != nil {
		logger.Warnw("refund_status_email_enqueue_failed", "refund_id", result.ID, "error", err)
	}
	return result, nil
}

// GetByReturnID fetches the refund for a return.
func (s *RefundService) GetByReturnID(returnID uint) (*models.RefundTransaction, error) {
	txn, err := s.refundRepo.GetByReturnID(returnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrRefundNotFound
	}
	return txn, nil
}

// GetByID fetches one refund transaction.
func (s *RefundService) GetByID(id uint) (*models.RefundTransaction, error) {
	txn, err := s.refundRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrRefundNotFound
	}
	return txn, nil
}

// ListAdmin pages through refund transactions.
func (s *RefundService) ListAdmin(filter repository.RefundListFilter) ([]models.RefundTransaction, int64, error) {
	return s.refundRepo.List(filter)
}

func saveRefund(repo repository.RefundRepository, txn *models.RefundTransaction, exists bool) error {
	if exists || txn.ID != 0 {
		return repo.Update(txn)
	}
	return repo.Create(txn)
}

// simulateExternalReversal stands in for the payment provider: no
// gateway exists upstream, so a synthetic reference is issued. Amounts
// that cannot be reversed are rejected.
func simulateExternalReversal(amount models.Money) (string, error) {
	if amount.Decimal.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("non-positive amount %s", amount.String())
	}
	return "EXT-" + uuid.NewString(), nil
}
