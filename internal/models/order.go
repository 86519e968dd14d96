package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a completed or in-flight purchase at a SPIRAL retailer.
// Orders are the anchor for return eligibility.
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // primary key
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // order number
	UserID      uint           `gorm:"index;not null" json:"user_id"`                             // shopper ID
	StoreID     uint           `gorm:"index;not null" json:"store_id"`                            // retailer store ID
	StoreName   string         `gorm:"type:varchar(200)" json:"store_name"`                       // store name snapshot
	Status      string         `gorm:"index;not null" json:"status"`                              // order status
	Currency    string         `gorm:"not null" json:"currency"`                                  // currency
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // total paid
	CompletedAt *time.Time     `gorm:"index" json:"completed_at"`                                 // completion time (return window anchor)
	CanceledAt  *time.Time     `gorm:"index" json:"canceled_at"`                                  // cancellation time
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // creation time
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                   // update time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // soft delete time

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // line items
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
