package services

import (
	"context"
	"time"

	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
)

// Clock abstracts time so payment delays and timestamps can be controlled in tests
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// CouponRegistry provides read access to coupon definitions
type CouponRegistry interface {
	FindByCode(code string) (*models.Coupon, bool)
	List() []models.Coupon
}

// QREncoder renders QR content into a displayable payload
type QREncoder interface {
	Encode(content string) (string, error)
}

// PaymentService interface for payment processing
type PaymentService interface {
	ProcessPayment(ctx context.Context, amount decimal.Decimal, billingInfo PaymentBillingInfo) (*PaymentResult, error)
}

// PaymentBillingInfo represents billing information for payment processing
type PaymentBillingInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PaymentResult represents the result of a payment processing attempt
type PaymentResult struct {
	PaymentID     string          `json:"payment_id"`
	Status        string          `json:"status"` // "success", "failed"
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	ProcessedAt   time.Time       `json:"processed_at"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}

// Succeeded returns true if the payment went through
func (r *PaymentResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// CheckoutServiceInterface defines the operations the HTTP layer drives
type CheckoutServiceInterface interface {
	Start(selection models.Selection, policy models.AllocationPolicy) (*models.CheckoutSession, error)
	Get(id string) (*models.CheckoutSession, error)
	Cancel(id string) error
	UpdateSlot(id, slotID string, update SlotUpdate) (*models.CheckoutSession, error)
	AvailableTypes(id, slotID string) ([]models.TicketType, error)
	CopyToAll(id string, sourceIndex int, field models.HolderField) (*models.CheckoutSession, error)
	ApplyCoupon(id, code string) (*models.CheckoutSession, error)
	RemoveCoupon(id string) (*models.CheckoutSession, error)
	Submit(ctx context.Context, id string) (*PurchaseResult, error)
	FindTicket(id, ticketNumber string) (models.PurchasedTicket, error)
	Catalog() models.Catalog
	Event() models.Event
}
