package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a SPIRAL shopper account.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // primary key
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // email
	PasswordHash string         `gorm:"not null" json:"-"`                 // password hash (never returned)
	DisplayName  string         `gorm:"default:''" json:"display_name"`    // display name
	Status       string         `gorm:"default:'active'" json:"status"`    // account status
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`       // token version (bulk invalidation)
	LastLoginAt  *time.Time     `json:"last_login_at"`                     // last login time
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`           // creation time
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`           // update time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // soft delete time
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
