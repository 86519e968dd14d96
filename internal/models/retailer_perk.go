package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// IntArray stores an int slice as a JSON column (schedule weekdays).
type IntArray []int

// Value implements driver.Valuer.
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = IntArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, a)
}

// RetailerPerk is an incentive a store offers to shopping trips.
// Threshold fields are pointers: a nil threshold is undefined and never
// blocks eligibility.
type RetailerPerk struct {
	ID               uint           `gorm:"primarykey" json:"id"`                           // primary key
	StoreID          uint           `gorm:"index;not null" json:"store_id"`                 // retailer store ID
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`        // perk title
	Type             string         `gorm:"type:varchar(20);not null" json:"type"`          // discount / bonus / freebie
	Value            Money          `gorm:"type:decimal(20,2);not null" json:"value"`       // percent for discount, fixed amount otherwise
	ScheduleType     string         `gorm:"type:varchar(20);not null" json:"schedule_type"` // always / weekly
	ScheduleStart    *time.Time     `gorm:"index" json:"schedule_start"`                    // weekly schedule start
	ScheduleDays     IntArray       `gorm:"type:json" json:"schedule_days"`                 // weekdays the perk runs (0=Sunday)
	MinCartValue     *Money         `gorm:"type:decimal(20,2)" json:"min_cart_value"`       // cart value trigger
	MinParticipants  *int           `json:"min_participants"`                               // trip size trigger
	NewCustomersOnly bool           `gorm:"not null;default:false" json:"new_customers_only"`
	UsageLimit       int            `gorm:"not null;default:0" json:"usage_limit"` // total uses (0 = unlimited)
	UsedCount        int            `gorm:"not null;default:0" json:"used_count"`  // uses consumed
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"` // creation time
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"` // update time
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`          // soft delete time
}

// TableName sets the table name.
func (RetailerPerk) TableName() string {
	return "retailer_perks"
}
