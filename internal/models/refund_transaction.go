package models

import (
	"time"

	"gorm.io/gorm"
)

// RefundTransaction records the money (or points) movement for an approved
// return. The unique index on ReturnID makes the refund per return
// single-shot at the database level.
type RefundTransaction struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // primary key
	ReturnID      uint           `gorm:"uniqueIndex;not null" json:"return_id"`               // return request ID (one refund per return)
	UserID        uint           `gorm:"index;not null" json:"user_id"`                       // shopper ID
	Method        string         `gorm:"type:varchar(32);index;not null" json:"method"`       // refund method
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // refunded amount
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`       // refund status
	ProviderRef   string         `gorm:"type:varchar(64)" json:"provider_ref"`                // external provider reference
	PointsAwarded int64          `gorm:"not null;default:0" json:"points_awarded"`            // points credited (loyalty_credit only)
	FailureReason string         `gorm:"type:varchar(255)" json:"failure_reason"`             // failure reason
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at"`                           // completion time
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // creation time
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                             // update time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // soft delete time
}

// TableName sets the table name.
func (RefundTransaction) TableName() string {
	return "refund_transactions"
}
