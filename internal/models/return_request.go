package models

import (
	"time"

	"gorm.io/gorm"
)

// ReturnRequest is a shopper's request to return one purchased item.
// Status moves along a fixed table: pending -> approved/denied,
// approved -> refunded; denied and refunded are terminal.
type ReturnRequest struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // primary key
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // shopper ID
	OrderID        uint           `gorm:"index;not null" json:"order_id"`                               // order ID
	OrderItemID    uint           `gorm:"index;not null" json:"order_item_id"`                          // order item ID
	ProductName    string         `gorm:"type:varchar(300);not null" json:"product_name"`               // product name snapshot
	OriginalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // amount paid for the item
	Status         string         `gorm:"type:varchar(20);index;not null" json:"status"`                // return status
	AutoApproved   bool           `gorm:"not null;default:false" json:"auto_approved"`                  // approved by the threshold rule
	Reason         string         `gorm:"type:varchar(500)" json:"reason"`                              // shopper's reason
	DecisionNote   string         `gorm:"type:varchar(500)" json:"decision_note"`                       // admin note on decision
	AdminID        *uint          `gorm:"index" json:"admin_id,omitempty"`                              // deciding admin
	DecisionAt     *time.Time     `gorm:"index" json:"decision_at"`                                     // decision time
	RefundedAt     *time.Time     `gorm:"index" json:"refunded_at"`                                     // refund completion time
	SubmittedAt    time.Time      `gorm:"index;not null" json:"submitted_at"`                           // submission time
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // creation time
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // update time
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // soft delete time
}

// TableName sets the table name.
func (ReturnRequest) TableName() string {
	return "return_requests"
}
