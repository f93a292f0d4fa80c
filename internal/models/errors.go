package models

import "errors"

// Common errors used throughout the application
var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrSlotNotFound       = errors.New("holder slot not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidQuantity    = errors.New("invalid ticket quantity")
	ErrEmptySelection     = errors.New("at least one ticket must be selected")
	ErrUnknownField       = errors.New("unknown holder field")
	ErrTypeUnavailable    = errors.New("no tickets of this type left to assign")
	ErrValidation         = errors.New("checkout validation failed")
	ErrDuplicateEntry     = errors.New("duplicate entry")

	ErrCheckoutInProgress = errors.New("checkout is already being processed")
	ErrCheckoutCompleted  = errors.New("checkout has already been completed")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrCheckoutPaid       = errors.New("checkout has been paid and is awaiting tickets")
	ErrIssuanceFailed     = errors.New("tickets could not be issued")

	ErrCouponNotFound      = errors.New("invalid coupon code")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrCouponNotApplicable = errors.New("coupon does not apply to the selected tickets")
	ErrCouponBelowMinimum  = errors.New("purchase does not meet the coupon minimum")
)
