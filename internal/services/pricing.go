package services

import (
	"fmt"

	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
)

// Subtotal sums quantity × unit price over the selection
func Subtotal(selection models.Selection, catalog models.Catalog) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range selection {
		if item.Quantity < 0 {
			return decimal.Zero, fmt.Errorf("%s: %w", item.TicketTypeID, models.ErrInvalidQuantity)
		}
		tt, ok := catalog.Find(item.TicketTypeID)
		if !ok {
			return decimal.Zero, fmt.Errorf("%s: %w", item.TicketTypeID, models.ErrTicketTypeNotFound)
		}
		subtotal = subtotal.Add(tt.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal, nil
}

// Total returns subtotal minus discount, never below zero
func Total(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Quote builds the price summary for a selection and an already evaluated discount
func Quote(selection models.Selection, catalog models.Catalog, discount decimal.Decimal) (models.PriceSummary, error) {
	subtotal, err := Subtotal(selection, catalog)
	if err != nil {
		return models.PriceSummary{}, err
	}

	return models.PriceSummary{
		TotalTickets: selection.TotalTickets(),
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        Total(subtotal, discount),
	}, nil
}
