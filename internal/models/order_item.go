package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is one purchased line item.
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // primary key
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                           // order ID
	ProductName string         `gorm:"type:varchar(300);not null" json:"product_name"`           // product name snapshot
	UnitPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // unit price
	Quantity    int            `gorm:"not null" json:"quantity"`                                 // quantity
	TotalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // line subtotal
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // creation time
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                  // update time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // soft delete time
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
