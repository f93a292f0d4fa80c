package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	count := flag.Int("n", 1, "number of coupons to generate")
	name := flag.String("name", "Promotional discount", "coupon name")
	kind := flag.String("kind", string(models.DiscountPercentage), "discount kind: percentage or fixed")
	value := flag.String("value", "10", "discount magnitude")
	types := flag.String("types", "", "comma separated ticket type ids the coupon applies to (empty for all)")
	maxUses := flag.Int("max-uses", 0, "usage limit (0 for unlimited)")
	flag.Parse()

	magnitude, err := decimal.NewFromString(*value)
	if err != nil {
		log.Fatalf("Invalid discount value %q: %v", *value, err)
	}

	var applicable []string
	for _, id := range strings.Split(*types, ",") {
		if id = strings.TrimSpace(id); id != "" {
			applicable = append(applicable, id)
		}
	}

	coupons := make([]models.Coupon, 0, *count)
	for i := 0; i < *count; i++ {
		code, err := models.GenerateCouponCode()
		if err != nil {
			log.Fatal("Failed to generate coupon code:", err)
		}

		coupon := models.Coupon{
			Code:              code,
			Name:              *name,
			Kind:              models.DiscountKind(*kind),
			Magnitude:         magnitude,
			ApplicableTypeIDs: applicable,
			MaxUses:           *maxUses,
			IsActive:          true,
		}
		if err := coupon.Validate(); err != nil {
			log.Fatal("Invalid coupon definition:", err)
		}
		coupons = append(coupons, coupon)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(coupons); err != nil {
		log.Fatal("Failed to write coupons:", err)
	}
	fmt.Fprintf(os.Stderr, "✅ Generated %d coupon(s)\n", len(coupons))
}
