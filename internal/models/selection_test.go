package models

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func testCatalog() Catalog {
	return Catalog{
		{ID: "attendee", Name: "Attendee", UnitPrice: decimal.NewFromInt(299)},
		{ID: "speaker", Name: "Speaker", UnitPrice: decimal.NewFromInt(199)},
	}
}

func TestSelection_Quantities(t *testing.T) {
	s := Selection{
		{TicketTypeID: "speaker", Quantity: 1},
		{TicketTypeID: "attendee", Quantity: 2},
		{TicketTypeID: "vip", Quantity: 0},
	}

	if got := s.Quantity("attendee"); got != 2 {
		t.Errorf("Quantity(attendee) = %d, want 2", got)
	}
	if got := s.Quantity("missing"); got != 0 {
		t.Errorf("Quantity(missing) = %d, want 0", got)
	}
	if got := s.TotalTickets(); got != 3 {
		t.Errorf("TotalTickets() = %d, want 3", got)
	}
	if got := s.TicketTypeIDs(); !reflect.DeepEqual(got, []string{"speaker", "attendee"}) {
		t.Errorf("TicketTypeIDs() = %v", got)
	}
}

func TestSelection_Validate(t *testing.T) {
	tests := []struct {
		name      string
		selection Selection
		wantErr   error
	}{
		{
			name:      "valid selection",
			selection: Selection{{TicketTypeID: "attendee", Quantity: 2}, {TicketTypeID: "speaker", Quantity: 1}},
		},
		{
			name:      "zero quantity entries are allowed",
			selection: Selection{{TicketTypeID: "attendee", Quantity: 1}, {TicketTypeID: "speaker", Quantity: 0}},
		},
		{
			name:      "negative quantity",
			selection: Selection{{TicketTypeID: "attendee", Quantity: -1}},
			wantErr:   ErrInvalidQuantity,
		},
		{
			name:      "unknown ticket type",
			selection: Selection{{TicketTypeID: "vip", Quantity: 1}},
			wantErr:   ErrTicketTypeNotFound,
		},
		{
			name:      "exactly the purchase limit",
			selection: Selection{{TicketTypeID: "attendee", Quantity: MaxTicketsPerPurchase - 1}, {TicketTypeID: "speaker", Quantity: 1}},
		},
		{
			name:      "single quantity over the limit",
			selection: Selection{{TicketTypeID: "attendee", Quantity: MaxTicketsPerPurchase + 1}},
			wantErr:   ErrInvalidQuantity,
		},
		{
			name:      "combined quantities over the limit",
			selection: Selection{{TicketTypeID: "attendee", Quantity: MaxTicketsPerPurchase}, {TicketTypeID: "speaker", Quantity: 1}},
			wantErr:   ErrInvalidQuantity,
		},
		{
			name:      "quantities that would overflow the total",
			selection: Selection{{TicketTypeID: "attendee", Quantity: math.MaxInt}, {TicketTypeID: "speaker", Quantity: 1}},
			wantErr:   ErrInvalidQuantity,
		},
		{
			name:      "repeated type summed against the limit",
			selection: Selection{{TicketTypeID: "attendee", Quantity: 60}, {TicketTypeID: "attendee", Quantity: 60}},
			wantErr:   ErrInvalidQuantity,
		},
		{
			name:      "nothing selected",
			selection: Selection{{TicketTypeID: "attendee", Quantity: 0}},
			wantErr:   ErrEmptySelection,
		},
		{
			name:      "empty selection",
			selection: nil,
			wantErr:   ErrEmptySelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.selection.Validate(testCatalog())
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSelection_Clone(t *testing.T) {
	s := Selection{{TicketTypeID: "attendee", Quantity: 2}}
	c := s.Clone()
	c[0].Quantity = 5

	if s[0].Quantity != 2 {
		t.Errorf("Clone() shares memory with the original")
	}
	if Selection(nil).Clone() != nil {
		t.Errorf("Clone() of nil selection should be nil")
	}
}
