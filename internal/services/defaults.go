package services

import (
	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultCatalog returns the ticket types sold for the summit
func DefaultCatalog() models.Catalog {
	return models.Catalog{
		{
			ID:          "attendee",
			Name:        "Attendee",
			UnitPrice:   decimal.NewFromInt(299),
			Description: "Full access to all sessions and networking",
			Benefits: []string{
				"Access to all keynote sessions",
				"Virtual networking sessions",
				"Access to recorded content",
				"Digital event materials",
			},
		},
		{
			ID:          "speaker",
			Name:        "Speaker",
			UnitPrice:   decimal.NewFromInt(199),
			Description: "Special pricing for industry speakers",
			Benefits: []string{
				"All attendee benefits",
				"Speaker lounge access",
				"Pre-event briefing session",
				"Speaking opportunity certificate",
			},
		},
	}
}

// DefaultCoupons returns the promotional codes accepted at checkout.
// They have no validity window, no usage limit and apply to every ticket type.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{
			Code:      "SAVE10",
			Name:      "Save 10%",
			Kind:      models.DiscountPercentage,
			Magnitude: decimal.NewFromInt(10),
			IsActive:  true,
		},
		{
			Code:      "SAVE20",
			Name:      "Save 20%",
			Kind:      models.DiscountPercentage,
			Magnitude: decimal.NewFromInt(20),
			IsActive:  true,
		},
		{
			Code:      "EARLY50",
			Name:      "Early bird",
			Kind:      models.DiscountFixed,
			Magnitude: decimal.NewFromInt(50),
			IsActive:  true,
		},
		{
			Code:      "STUDENT",
			Name:      "Student discount",
			Kind:      models.DiscountPercentage,
			Magnitude: decimal.NewFromInt(15),
			IsActive:  true,
		},
	}
}
