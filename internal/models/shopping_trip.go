package models

import (
	"time"

	"gorm.io/gorm"
)

// ShoppingTrip is a host-organized group shopping outing.
type ShoppingTrip struct {
	ID              uint           `gorm:"primarykey" json:"id"`                       // primary key
	TripCode        string         `gorm:"uniqueIndex;not null" json:"trip_code"`      // shareable trip code
	HostUserID      uint           `gorm:"index;not null" json:"host_user_id"`         // organizing shopper
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`     // trip name
	Date            time.Time      `gorm:"index;not null" json:"date"`                 // planned date
	Location        string         `gorm:"type:varchar(300)" json:"location"`          // meeting point
	StoreID         *uint          `gorm:"index" json:"store_id,omitempty"`            // target store, optional
	MaxParticipants int            `gorm:"not null;default:0" json:"max_participants"` // cap (0 = unlimited)
	Status          string         `gorm:"type:varchar(20);index;not null" json:"status"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"` // creation time
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"` // update time
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`          // soft delete time

	Invites   []TripInvite   `gorm:"foreignKey:TripID" json:"invites,omitempty"`   // invite list
	Responses []TripResponse `gorm:"foreignKey:TripID" json:"responses,omitempty"` // guest responses
}

// TableName sets the table name.
func (ShoppingTrip) TableName() string {
	return "shopping_trips"
}
