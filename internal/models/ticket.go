package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketType represents a purchasable ticket category for an event
type TicketType struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description"`
	Benefits    []string        `json:"benefits"`
}

// Catalog is the ordered set of ticket types offered for one event
type Catalog []TicketType

// PurchasedTicket is an issued ticket bound to a single holder.
// Values are built once by the issuer and never modified afterwards.
type PurchasedTicket struct {
	ID           string     `json:"id"`
	TicketNumber string     `json:"ticket_number"`
	TicketType   TicketType `json:"ticket_type"`
	HolderName   string     `json:"holder_name"`
	HolderEmail  string     `json:"holder_email"`
	EventName    string     `json:"event_name"`
	EventDate    string     `json:"event_date"`
	Venue        string     `json:"venue"`
	PurchasedAt  time.Time  `json:"purchased_at"`
	QRPayload    string     `json:"qr_payload"`
}

// Validate validates the ticket type data
func (tt *TicketType) Validate() error {
	if strings.TrimSpace(tt.ID) == "" {
		return errors.New("ticket type id is required")
	}

	if err := validateTicketTypeName(tt.Name); err != nil {
		return err
	}

	if err := validateTicketTypePrice(tt.UnitPrice); err != nil {
		return err
	}

	if err := validateTicketTypeDescription(tt.Description); err != nil {
		return err
	}

	return nil
}

// Snapshot returns a copy that shares no memory with the receiver
func (tt TicketType) Snapshot() TicketType {
	if tt.Benefits != nil {
		tt.Benefits = append([]string(nil), tt.Benefits...)
	}
	return tt
}

// Find returns the ticket type with the given id
func (c Catalog) Find(id string) (TicketType, bool) {
	for _, tt := range c {
		if tt.ID == id {
			return tt, true
		}
	}
	return TicketType{}, false
}

// Validate checks every ticket type and rejects duplicate ids
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return errors.New("catalog must contain at least one ticket type")
	}

	seen := make(map[string]bool, len(c))
	for i := range c {
		if err := c[i].Validate(); err != nil {
			return fmt.Errorf("ticket type %d: %w", i+1, err)
		}
		if seen[c[i].ID] {
			return fmt.Errorf("ticket type %q: %w", c[i].ID, ErrDuplicateEntry)
		}
		seen[c[i].ID] = true
	}

	return nil
}

// validateTicketTypeName validates a ticket type name
func validateTicketTypeName(name string) error {
	if name == "" {
		return errors.New("ticket type name is required")
	}

	if len(name) > 100 {
		return errors.New("ticket type name must be less than 100 characters")
	}

	if strings.TrimSpace(name) == "" {
		return errors.New("ticket type name cannot be only whitespace")
	}

	return nil
}

// validateTicketTypePrice validates a ticket type unit price
func validateTicketTypePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.New("ticket price cannot be negative")
	}

	if !price.Equal(price.Round(2)) {
		return errors.New("ticket price cannot have more than two decimal places")
	}

	return nil
}

// validateTicketTypeDescription validates a ticket type description
func validateTicketTypeDescription(description string) error {
	// Description is optional, but if provided, it should not be too long
	if len(description) > 1000 {
		return errors.New("ticket type description must be less than 1000 characters")
	}

	return nil
}
