package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyAccount holds a shopper's SPIRAL point balance.
type LoyaltyAccount struct {
	ID        uint           `gorm:"primarykey" json:"id"`                // primary key
	UserID    uint           `gorm:"not null;uniqueIndex" json:"user_id"` // shopper ID
	Balance   int64          `gorm:"not null;default:0" json:"balance"`   // point balance, never negative
	CreatedAt time.Time      `gorm:"index" json:"created_at"`             // creation time
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`             // update time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                      // soft delete time
}

// TableName sets the table name.
func (LoyaltyAccount) TableName() string {
	return "loyalty_accounts"
}
