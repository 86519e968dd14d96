package models

import (
	"time"

	"gorm.io/gorm"
)

// PerkRedemption records one consumed perk use and the cart adjustment
// it produced.
type PerkRedemption struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // primary key
	PerkID        uint           `gorm:"index;not null" json:"perk_id"`                               // perk ID
	TripID        *uint          `gorm:"index" json:"trip_id,omitempty"`                              // shopping trip the perk was applied to
	CartValue     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cart_value"`     // cart value at apply time
	AdjustedValue Money          `gorm:"type:decimal(20,2);not null;default:0" json:"adjusted_value"` // cart value after the perk
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // creation time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete time
}

// TableName sets the table name.
func (PerkRedemption) TableName() string {
	return "perk_redemptions"
}
