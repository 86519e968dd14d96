package constants

// Return request status constants
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusDenied   = "denied"
	ReturnStatusRefunded = "refunded"
)

// Refund method constants
const (
	RefundMethodExternalPayment = "external_payment"
	RefundMethodLoyaltyCredit   = "loyalty_credit"
)

// Refund transaction status constants
const (
	RefundStatusPending   = "pending"
	RefundStatusCompleted = "completed"
	RefundStatusFailed    = "failed"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// Loyalty transaction type constants
const (
	LoyaltyTxnTypeRefundCredit = "refund_credit"
	LoyaltyTxnTypeTripBonus    = "trip_bonus"
	LoyaltyTxnTypeAdminAdjust  = "admin_adjust"
)

// Loyalty transaction direction constants
const (
	LoyaltyTxnDirectionIn  = "in"
	LoyaltyTxnDirectionOut = "out"
)

// Retailer perk type constants
const (
	PerkTypeDiscount = "discount"
	PerkTypeBonus    = "bonus"
	PerkTypeFreebie  = "freebie"
)

// Retailer perk schedule type constants
const (
	PerkScheduleAlways = "always"
	PerkScheduleWeekly = "weekly"
)

// Perk usage limit constants
const (
	PerkUsageUnlimited = 0
)

// Shopping trip status constants
const (
	TripStatusOpen     = "open"
	TripStatusClosed   = "closed"
	TripStatusCanceled = "canceled"
)

// Trip invite response constants
const (
	TripResponseAccept  = "accept"
	TripResponseDecline = "decline"
	TripResponseMaybe   = "maybe"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Queue constants
const (
	QueueDefault          = "default"
	TaskTripInviteEmail   = "trip:invite_email"
	TaskRefundStatusEmail = "refund:status_email"
)

// Cache default constants
const (
	RedisPrefixDefault = "spiral"
)

// Currency constants
const (
	SiteCurrencyDefault = "USD"
)
