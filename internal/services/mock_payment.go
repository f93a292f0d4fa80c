package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentDelay is how long a simulated payment takes
const DefaultPaymentDelay = 2 * time.Second

// MockPaymentService simulates a payment provider with a fixed processing delay
type MockPaymentService struct {
	delay  time.Duration
	clock  Clock
	logger *slog.Logger
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService(delay time.Duration, clock Clock, logger *slog.Logger) *MockPaymentService {
	if delay < 0 {
		delay = 0
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Payment service: using simulated payments", "delay", delay)

	return &MockPaymentService{
		delay:  delay,
		clock:  clock,
		logger: logger,
	}
}

// ProcessPayment waits for the configured delay and then reports success.
// Cancelling ctx aborts the wait.
func (s *MockPaymentService) ProcessPayment(ctx context.Context, amount decimal.Decimal, billingInfo PaymentBillingInfo) (*PaymentResult, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("payment amount cannot be negative: %s", amount.StringFixed(2))
	}

	s.logger.Info("Mock Payment: processing payment", "amount", amount.StringFixed(2), "email", billingInfo.Email)

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			s.logger.Warn("Mock Payment: cancelled", "error", ctx.Err())
			return nil, ctx.Err()
		case <-s.clock.After(s.delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &PaymentResult{
		PaymentID:     fmt.Sprintf("mock_pay_%d_%s", now.Unix(), amount.StringFixed(2)),
		Status:        "success",
		Amount:        amount,
		TransactionID: fmt.Sprintf("txn_%d", now.UnixNano()),
		ProcessedAt:   now,
	}, nil
}
