package services

import (
	"context"
	"sync"
	"time"

	"event-checkout/internal/logger"
	"event-checkout/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeClock is a settable clock whose After fires immediately
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	waited []time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waited = append(c.waited, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stuckClock never fires After, so only context cancellation ends a wait
type stuckClock struct {
	fakeClock
}

func (c *stuckClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

// MockQREncoder is a testify mock for QREncoder
type MockQREncoder struct {
	mock.Mock
}

func (m *MockQREncoder) Encode(content string) (string, error) {
	args := m.Called(content)
	return args.String(0), args.Error(1)
}

// MockPaymentProvider is a testify mock for PaymentService
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) ProcessPayment(ctx context.Context, amount decimal.Decimal, billingInfo PaymentBillingInfo) (*PaymentResult, error) {
	args := m.Called(ctx, amount, billingInfo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentResult), args.Error(1)
}

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func testEvent() models.Event {
	return models.Event{
		Name:      "LP-GP Summit: Investing in Emerging Market Startups (Virtual)",
		StartDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
		Venue:     "Virtual Event",
	}
}

func holder(slotID, typeID, first, last string) models.HolderSlot {
	return models.HolderSlot{
		SlotID:       slotID,
		TicketTypeID: typeID,
		FirstName:    first,
		LastName:     last,
		Email:        first + "@example.com",
		Phone:        "+254 712 345678",
	}
}

func newTestCouponService(clock Clock, coupons ...models.Coupon) *CouponService {
	if len(coupons) == 0 {
		coupons = DefaultCoupons()
	}
	registry, err := NewCouponRegistry(coupons...)
	if err != nil {
		panic(err)
	}
	return NewCouponService(registry, clock, nil, logger.Discard())
}

func amountEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString(want))
	})
}
