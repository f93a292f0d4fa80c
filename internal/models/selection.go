package models

import "fmt"

// MaxTicketsPerPurchase bounds a single checkout; every ticket needs its own holder slot
const MaxTicketsPerPurchase = 100

// SelectionItem is the quantity requested for one ticket type
type SelectionItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// Selection is the ordered list of requested quantities per ticket type.
// Order follows the order in which the buyer picked the types.
type Selection []SelectionItem

// Quantity returns the requested quantity for a ticket type
func (s Selection) Quantity(ticketTypeID string) int {
	total := 0
	for _, item := range s {
		if item.TicketTypeID == ticketTypeID {
			total += item.Quantity
		}
	}
	return total
}

// TotalTickets returns the sum of all requested quantities
func (s Selection) TotalTickets() int {
	total := 0
	for _, item := range s {
		total += item.Quantity
	}
	return total
}

// TicketTypeIDs returns the ids of types with a positive quantity, first appearance first
func (s Selection) TicketTypeIDs() []string {
	seen := make(map[string]bool, len(s))
	ids := make([]string, 0, len(s))
	for _, item := range s {
		if item.Quantity <= 0 || seen[item.TicketTypeID] {
			continue
		}
		seen[item.TicketTypeID] = true
		ids = append(ids, item.TicketTypeID)
	}
	return ids
}

// Validate checks the selection against the catalog and the per-purchase limit
func (s Selection) Validate(catalog Catalog) error {
	total := 0
	for _, item := range s {
		if item.Quantity < 0 {
			return fmt.Errorf("%s: %w", item.TicketTypeID, ErrInvalidQuantity)
		}
		if item.Quantity > MaxTicketsPerPurchase-total {
			return fmt.Errorf("at most %d tickets per purchase: %w", MaxTicketsPerPurchase, ErrInvalidQuantity)
		}
		if _, ok := catalog.Find(item.TicketTypeID); !ok {
			return fmt.Errorf("%s: %w", item.TicketTypeID, ErrTicketTypeNotFound)
		}
		total += item.Quantity
	}

	if total <= 0 {
		return ErrEmptySelection
	}

	return nil
}

// Clone returns an independent copy of the selection
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	return append(Selection(nil), s...)
}
