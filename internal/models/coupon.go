package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind represents how a coupon reduces the subtotal
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Coupon represents a discount code definition
type Coupon struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Kind              DiscountKind    `json:"discount_kind"`
	Magnitude         decimal.Decimal `json:"discount_magnitude"`
	ApplicableTypeIDs []string        `json:"applicable_type_ids,omitempty"`
	MinimumPurchase   decimal.Decimal `json:"minimum_purchase"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidUntil        time.Time       `json:"valid_until"`
	MaxUses           int             `json:"max_uses"`
	CurrentUses       int             `json:"current_uses"`
	IsActive          bool            `json:"is_active"`
}

// CouponErrorReason identifies why a coupon was rejected
type CouponErrorReason string

const (
	CouponNotFound      CouponErrorReason = "not_found"
	CouponExpired       CouponErrorReason = "expired"
	CouponExhausted     CouponErrorReason = "exhausted"
	CouponNotApplicable CouponErrorReason = "not_applicable"
	CouponBelowMinimum  CouponErrorReason = "below_minimum"
)

// CouponError is returned when a code cannot be applied to a purchase
type CouponError struct {
	Code    string            `json:"code"`
	Reason  CouponErrorReason `json:"reason"`
	Minimum decimal.Decimal   `json:"minimum,omitempty"`
}

func (e *CouponError) Error() string {
	switch e.Reason {
	case CouponNotFound:
		return "Invalid coupon code"
	case CouponExpired:
		return "This coupon has expired"
	case CouponExhausted:
		return "This coupon has reached its usage limit"
	case CouponNotApplicable:
		return "This coupon does not apply to the selected tickets"
	case CouponBelowMinimum:
		return fmt.Sprintf("A minimum purchase of %s is required for this coupon", e.Minimum.StringFixed(2))
	default:
		return "Coupon could not be applied"
	}
}

func (e *CouponError) Unwrap() error {
	switch e.Reason {
	case CouponNotFound:
		return ErrCouponNotFound
	case CouponExpired:
		return ErrCouponExpired
	case CouponExhausted:
		return ErrCouponExhausted
	case CouponNotApplicable:
		return ErrCouponNotApplicable
	case CouponBelowMinimum:
		return ErrCouponBelowMinimum
	default:
		return nil
	}
}

// NormalizeCouponCode trims and upper-cases a code for lookups
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate validates the coupon definition
func (c *Coupon) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("coupon code is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return errors.New("coupon name is required")
	}

	switch c.Kind {
	case DiscountPercentage, DiscountFixed:
	default:
		return errors.New("discount kind must be percentage or fixed")
	}

	if !c.Magnitude.IsPositive() {
		return errors.New("discount value must be greater than 0")
	}

	if c.Kind == DiscountPercentage && c.Magnitude.GreaterThan(hundred) {
		return errors.New("percentage discount cannot exceed 100%")
	}

	if c.MinimumPurchase.IsNegative() {
		return errors.New("minimum purchase cannot be negative")
	}

	if c.MaxUses < 0 {
		return errors.New("max uses cannot be negative")
	}

	if c.MaxUses > 0 && c.CurrentUses > c.MaxUses {
		return errors.New("current uses cannot exceed max uses")
	}

	if !c.ValidFrom.IsZero() && !c.ValidUntil.IsZero() && c.ValidFrom.After(c.ValidUntil) {
		return errors.New("valid until date must be after valid from date")
	}

	return nil
}

// IsWithinValidity reports whether now falls inside the validity window.
// A zero bound leaves that side of the window open.
func (c *Coupon) IsWithinValidity(now time.Time) bool {
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return false
	}
	return true
}

// IsExhausted reports whether the usage limit has been reached. Zero means unlimited.
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses > 0 && c.CurrentUses >= c.MaxUses
}

// AppliesTo reports whether any of the purchased type ids is eligible
func (c *Coupon) AppliesTo(typeIDs []string) bool {
	if len(c.ApplicableTypeIDs) == 0 {
		return true
	}
	for _, applicable := range c.ApplicableTypeIDs {
		for _, id := range typeIDs {
			if applicable == id {
				return true
			}
		}
	}
	return false
}

// DiscountFor computes the discount on subtotal, never exceeding it
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.Kind {
	case DiscountPercentage:
		discount = subtotal.Mul(c.Magnitude).Div(hundred).Round(2)
	case DiscountFixed:
		discount = c.Magnitude
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal)
}

const couponCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCouponCode returns a random 8 character code of uppercase letters and digits
func GenerateCouponCode() (string, error) {
	var b strings.Builder
	n := big.NewInt(int64(len(couponCodeAlphabet)))
	for i := 0; i < 8; i++ {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("failed to generate coupon code: %w", err)
		}
		b.WriteByte(couponCodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
