package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAllocationError_Message(t *testing.T) {
	err := AllocationError{TicketTypeID: "speaker", TicketTypeName: "Speaker", Required: 1, Assigned: 0}
	if got := err.Error(); got != "Please assign exactly 1 Speaker ticket(s)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAllocationResult_Err(t *testing.T) {
	if err := (AllocationResult{Valid: true}).Err(); err != nil {
		t.Errorf("Err() on valid result = %v", err)
	}

	result := AllocationResult{
		AllocationErrors: []AllocationError{{TicketTypeID: "attendee", TicketTypeName: "Attendee", Required: 2, Assigned: 1}},
		FieldErrors: []FieldError{
			{SlotIndex: 0, SlotID: "ticket-1", Field: FieldEmail, Message: "Email is required"},
			{SlotIndex: 1, SlotID: "ticket-2", Field: FieldPhone, Message: "Phone number is required"},
		},
	}

	err := result.Err()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Err() = %v, want ErrValidation", err)
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Err() is not *ValidationErrors")
	}
	if len(verrs.Fields) != 2 || verrs.Fields[1].SlotIndex != 1 || verrs.Fields[1].Field != FieldPhone {
		t.Errorf("Fields = %v", verrs.Fields)
	}
	if !strings.Contains(err.Error(), "Please assign exactly 2 Attendee ticket(s)") {
		t.Errorf("Error() = %q", err.Error())
	}

	msgs := verrs.Messages()
	if len(msgs["allocation"]) != 1 || msgs["0.email"][0] != "Email is required" {
		t.Errorf("Messages() = %v", msgs)
	}
}

func TestCheckoutSession_Clone(t *testing.T) {
	s := &CheckoutSession{
		ID:        "abc",
		Selection: Selection{{TicketTypeID: "attendee", Quantity: 1}},
		Slots:     []HolderSlot{{SlotID: "ticket-1"}},
		Tickets: []PurchasedTicket{{
			TicketNumber: "TKT-1-ABC",
			TicketType:   TicketType{ID: "attendee", Benefits: []string{"a"}},
		}},
		Coupon: CouponState{Code: "SAVE10", Discount: decimal.NewFromInt(10)},
		Status: CheckoutOpen,
	}

	c := s.Clone()
	c.Selection[0].Quantity = 9
	c.Slots[0].FirstName = "changed"
	c.Tickets[0].TicketType.Benefits[0] = "changed"

	if s.Selection[0].Quantity != 1 || s.Slots[0].FirstName != "" || s.Tickets[0].TicketType.Benefits[0] != "a" {
		t.Errorf("Clone() shares memory with the original")
	}

	if _, ok := s.FindTicket("TKT-1-ABC"); !ok {
		t.Errorf("FindTicket() did not find issued ticket")
	}
	if !s.Coupon.Applied() {
		t.Errorf("Coupon.Applied() = false")
	}
}

func TestCheckoutSession_IsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &CheckoutSession{Status: CheckoutOpen, ExpiresAt: now}

	if s.IsExpired(now) {
		t.Errorf("IsExpired() at expiry instant")
	}
	if !s.IsExpired(now.Add(time.Second)) {
		t.Errorf("IsExpired() after expiry")
	}

	s.ExpiresAt = time.Time{}
	if s.IsExpired(now.Add(time.Hour)) {
		t.Errorf("zero expiry should never expire")
	}
}

func TestCheckoutSession_Status(t *testing.T) {
	tests := []struct {
		status       CheckoutStatus
		open         bool
		holdsPayment bool
	}{
		{CheckoutOpen, true, false},
		{CheckoutProcessing, false, true},
		{CheckoutPaid, false, true},
		{CheckoutCompleted, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := &CheckoutSession{Status: tt.status}
			if got := s.IsOpen(); got != tt.open {
				t.Errorf("IsOpen() = %v, want %v", got, tt.open)
			}
			if got := s.HoldsPayment(); got != tt.holdsPayment {
				t.Errorf("HoldsPayment() = %v, want %v", got, tt.holdsPayment)
			}
		})
	}
}
