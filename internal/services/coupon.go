package services

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
)

// InMemoryCouponRegistry is a read-only, process-local coupon registry
type InMemoryCouponRegistry struct {
	mu      sync.RWMutex
	coupons map[string]models.Coupon
}

// NewCouponRegistry validates the given coupons and indexes them by normalized code
func NewCouponRegistry(coupons ...models.Coupon) (*InMemoryCouponRegistry, error) {
	r := &InMemoryCouponRegistry{coupons: make(map[string]models.Coupon, len(coupons))}
	for i := range coupons {
		c := coupons[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("coupon %q: %w", c.Code, err)
		}
		key := models.NormalizeCouponCode(c.Code)
		if _, exists := r.coupons[key]; exists {
			return nil, fmt.Errorf("coupon %q: %w", c.Code, models.ErrDuplicateEntry)
		}
		c.ApplicableTypeIDs = append([]string(nil), c.ApplicableTypeIDs...)
		r.coupons[key] = c
	}
	return r, nil
}

// FindByCode looks a coupon up, ignoring case and surrounding space
func (r *InMemoryCouponRegistry) FindByCode(code string) (*models.Coupon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coupons[models.NormalizeCouponCode(code)]
	if !ok {
		return nil, false
	}
	c.ApplicableTypeIDs = append([]string(nil), c.ApplicableTypeIDs...)
	return &c, true
}

// List returns every coupon sorted by code
func (r *InMemoryCouponRegistry) List() []models.Coupon {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CouponService evaluates coupon codes against a purchase
type CouponService struct {
	registry CouponRegistry
	clock    Clock
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(registry CouponRegistry, clock Clock, metrics *Metrics, logger *slog.Logger) *CouponService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CouponService{
		registry: registry,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// ApplyCoupon returns the discount code grants on subtotal for the given selection.
// Rejections are returned as *models.CouponError with a zero discount.
// Evaluation has no side effects, so applying the same code twice gives the same result.
func (s *CouponService) ApplyCoupon(code string, subtotal decimal.Decimal, selection models.Selection) (decimal.Decimal, error) {
	coupon, err := s.evaluate(code, subtotal, selection)
	if err != nil {
		s.metrics.couponOutcome(string(err.Reason))
		s.logger.Debug("coupon rejected", "code", models.NormalizeCouponCode(code), "reason", err.Reason)
		return decimal.Zero, err
	}

	discount := coupon.DiscountFor(subtotal)
	s.metrics.couponOutcome("applied")
	s.logger.Debug("coupon applied", "code", coupon.Code, "discount", discount.StringFixed(2))
	return discount, nil
}

func (s *CouponService) evaluate(code string, subtotal decimal.Decimal, selection models.Selection) (*models.Coupon, *models.CouponError) {
	normalized := models.NormalizeCouponCode(code)
	reject := func(reason models.CouponErrorReason) *models.CouponError {
		return &models.CouponError{Code: normalized, Reason: reason}
	}

	if normalized == "" || s.registry == nil {
		return nil, reject(models.CouponNotFound)
	}

	coupon, ok := s.registry.FindByCode(normalized)
	if !ok || !coupon.IsActive {
		return nil, reject(models.CouponNotFound)
	}

	if !coupon.IsWithinValidity(s.clock.Now()) {
		return nil, reject(models.CouponExpired)
	}

	if coupon.IsExhausted() {
		return nil, reject(models.CouponExhausted)
	}

	if !coupon.AppliesTo(selection.TicketTypeIDs()) {
		return nil, reject(models.CouponNotApplicable)
	}

	if subtotal.LessThan(coupon.MinimumPurchase) {
		ce := reject(models.CouponBelowMinimum)
		ce.Minimum = coupon.MinimumPurchase
		return nil, ce
	}

	return coupon, nil
}
