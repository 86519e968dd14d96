package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyTransaction is one ledger entry against a loyalty account.
// BalanceBefore/BalanceAfter snapshot the account at write time so the
// ledger is auditable without replaying it.
type LoyaltyTransaction struct {
	ID            uint           `gorm:"primarykey" json:"id"`                          // primary key
	UserID        uint           `gorm:"index;not null" json:"user_id"`                 // shopper ID
	RefundID      *uint          `gorm:"index" json:"refund_id,omitempty"`              // source refund transaction
	TripID        *uint          `gorm:"index" json:"trip_id,omitempty"`                // source shopping trip
	Type          string         `gorm:"type:varchar(32);index;not null" json:"type"`   // entry type
	Direction     string         `gorm:"type:varchar(8);not null" json:"direction"`     // in / out
	Points        int64          `gorm:"not null" json:"points"`                        // points moved (positive)
	BalanceBefore int64          `gorm:"not null" json:"balance_before"`                // balance before the entry
	BalanceAfter  int64          `gorm:"not null" json:"balance_after"`                 // balance after the entry
	Reference     string         `gorm:"type:varchar(64);index" json:"reference"`       // external reference
	Remark        string         `gorm:"type:varchar(255)" json:"remark"`               // free-form note
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                       // creation time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                // soft delete time
}

// TableName sets the table name.
func (LoyaltyTransaction) TableName() string {
	return "loyalty_transactions"
}
