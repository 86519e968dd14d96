package repository

import "time"

// ReturnListFilter filters return request queries.
type ReturnListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// RefundListFilter filters refund transaction queries.
type RefundListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	ReturnID    uint
	Method      string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LoyaltyTransactionListFilter filters loyalty ledger queries.
type LoyaltyTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PerkListFilter filters retailer perk queries.
type PerkListFilter struct {
	Page     int
	PageSize int
	StoreID  uint
	Type     string
	IsActive *bool
}

// TripListFilter filters shopping trip queries.
type TripListFilter struct {
	Page       int
	PageSize   int
	HostUserID uint
	Status     string
}

// OrderListFilter filters order queries.
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	StoreID  uint
	Status   string
}

// UserListFilter filters user queries.
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
