package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutStatus represents the status of a checkout session
type CheckoutStatus string

const (
	CheckoutOpen       CheckoutStatus = "open"
	CheckoutProcessing CheckoutStatus = "processing"
	// CheckoutPaid means payment was captured but tickets are not issued yet
	CheckoutPaid      CheckoutStatus = "paid"
	CheckoutCompleted CheckoutStatus = "completed"
)

// CouponState is the coupon currently attached to a checkout
type CouponState struct {
	Code     string          `json:"code,omitempty"`
	Discount decimal.Decimal `json:"discount"`
	Error    string          `json:"error,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// Applied reports whether a coupon is currently reducing the total
func (c CouponState) Applied() bool {
	return c.Code != "" && c.Error == ""
}

// PriceSummary is the breakdown shown before payment
type PriceSummary struct {
	TotalTickets int             `json:"total_tickets"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

// CheckoutSession holds everything a buyer has entered for one purchase
type CheckoutSession struct {
	ID        string            `json:"id"`
	Policy    AllocationPolicy  `json:"policy"`
	Selection Selection         `json:"selection"`
	Slots     []HolderSlot      `json:"slots"`
	Coupon    CouponState       `json:"coupon"`
	Summary   PriceSummary      `json:"summary"`
	Status    CheckoutStatus    `json:"status"`
	PaymentID string            `json:"payment_id,omitempty"`
	Tickets   []PurchasedTicket `json:"tickets,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// IsOpen returns true if the session still accepts changes
func (s *CheckoutSession) IsOpen() bool {
	return s.Status == CheckoutOpen
}

// IsProcessing returns true while payment and issuance are running
func (s *CheckoutSession) IsProcessing() bool {
	return s.Status == CheckoutProcessing
}

// IsPaid returns true when payment was taken but issuance still has to succeed
func (s *CheckoutSession) IsPaid() bool {
	return s.Status == CheckoutPaid
}

// HoldsPayment reports whether discarding the session would lose a charge in flight or taken
func (s *CheckoutSession) HoldsPayment() bool {
	return s.IsProcessing() || s.IsPaid()
}

// IsCompleted returns true once tickets have been issued
func (s *CheckoutSession) IsCompleted() bool {
	return s.Status == CheckoutCompleted
}

// IsExpired returns true if the session is past its expiry
func (s *CheckoutSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// FindTicket returns the issued ticket with the given number
func (s *CheckoutSession) FindTicket(ticketNumber string) (PurchasedTicket, bool) {
	for _, t := range s.Tickets {
		if t.TicketNumber == ticketNumber {
			return t, true
		}
	}
	return PurchasedTicket{}, false
}

// Clone returns a deep copy of the session
func (s *CheckoutSession) Clone() *CheckoutSession {
	out := *s
	out.Selection = s.Selection.Clone()
	if s.Slots != nil {
		out.Slots = append([]HolderSlot(nil), s.Slots...)
	}
	if s.Tickets != nil {
		out.Tickets = make([]PurchasedTicket, len(s.Tickets))
		for i, t := range s.Tickets {
			t.TicketType = t.TicketType.Snapshot()
			out.Tickets[i] = t
		}
	}
	return &out
}
