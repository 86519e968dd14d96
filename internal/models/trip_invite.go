package models

import (
	"time"

	"gorm.io/gorm"
)

// TripInvite is one invited guest email on a shopping trip.
type TripInvite struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                                        // primary key
	TripID     uint           `gorm:"not null;index;index:idx_trip_invite_unique,unique" json:"trip_id"`           // trip ID
	GuestEmail string         `gorm:"type:varchar(200);not null;index:idx_trip_invite_unique,unique" json:"guest_email"` // invited email
	InvitedAt  time.Time      `gorm:"index;not null" json:"invited_at"`                                            // invite time
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                                     // creation time
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                              // soft delete time
}

// TableName sets the table name.
func (TripInvite) TableName() string {
	return "trip_invites"
}
