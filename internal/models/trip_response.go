package models

import (
	"time"

	"gorm.io/gorm"
)

// TripResponse is a guest's RSVP to a trip invite. One row per
// (trip, email); a repeat response overwrites the previous one.
type TripResponse struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                                                 // primary key
	TripID        uint           `gorm:"not null;index;index:idx_trip_response_unique,unique" json:"trip_id"`                  // trip ID
	GuestEmail    string         `gorm:"type:varchar(200);not null;index:idx_trip_response_unique,unique" json:"guest_email"` // responding email
	Response      string         `gorm:"type:varchar(16);not null" json:"response"`                                            // accept / decline / maybe
	Message       string         `gorm:"type:varchar(500)" json:"message"`                                                     // optional note to the host
	BonusAwarded  bool           `gorm:"not null;default:false" json:"bonus_awarded"`                                          // host bonus already credited for this guest
	RespondedAt   time.Time      `gorm:"index;not null" json:"responded_at"`                                                   // last response time
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                                              // creation time
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                                              // update time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                                       // soft delete time
}

// TableName sets the table name.
func (TripResponse) TableName() string {
	return "trip_responses"
}
