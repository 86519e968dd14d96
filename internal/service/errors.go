package service

import "errors"

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrAdminNotFound      = errors.New("admin not found")
)

// Order errors
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrOrderNotOwned    = errors.New("order does not belong to user")
	ErrOrderNotCompleted = errors.New("order not completed")
)

// Return errors
var (
	ErrReturnNotFound         = errors.New("return request not found")
	ErrReturnInvalidInput     = errors.New("invalid return input")
	ErrReturnWindowExpired    = errors.New("return window expired")
	ErrReturnAlreadyRequested = errors.New("item already under a return request")
	ErrReturnInvalidTransition = errors.New("illegal return status transition")
	ErrReturnInvalidStatus    = errors.New("invalid return status")
)

// Refund errors
var (
	ErrRefundNotFound       = errors.New("refund transaction not found")
	ErrReturnNotApproved    = errors.New("return is not approved")
	ErrRefundAlreadyExists  = errors.New("refund already processed for return")
	ErrRefundInvalidMethod  = errors.New("invalid refund method")
	ErrRefundProviderFailed = errors.New("refund provider rejected the reversal")
)

// Loyalty errors
var (
	ErrLoyaltyAccountNotFound = errors.New("loyalty account not found")
	ErrLoyaltyInvalidPoints   = errors.New("invalid point amount")
	ErrLoyaltyInsufficient    = errors.New("insufficient point balance")
)

// Perk errors
var (
	ErrPerkNotFound     = errors.New("perk not found")
	ErrPerkNotEligible  = errors.New("perk thresholds not met")
	ErrPerkExhausted    = errors.New("perk usage limit reached")
	ErrPerkInactive     = errors.New("perk is not active")
	ErrPerkInvalidInput = errors.New("invalid perk input")
)

// Trip errors
var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrTripInvalidInput   = errors.New("invalid trip input")
	ErrTripClosed         = errors.New("trip is not open")
	ErrNotInvited         = errors.New("email is not on the invite list")
	ErrTripInvalidResponse = errors.New("invalid trip response")
)
