package services

import (
	"context"
	"testing"
	"time"

	"event-checkout/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPaymentService_ProcessPayment(t *testing.T) {
	clock := newFakeClock(testNow)
	service := NewMockPaymentService(DefaultPaymentDelay, clock, logger.Discard())

	result, err := service.ProcessPayment(context.Background(), dec("717.3"), PaymentBillingInfo{Email: "ada@example.com"})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, "success", result.Status)
	assert.True(t, result.Amount.Equal(dec("717.3")))
	assert.Contains(t, result.PaymentID, "mock_pay_")
	assert.Contains(t, result.PaymentID, "717.30")
	assert.Equal(t, testNow.Add(2*time.Second), result.ProcessedAt)
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.waited)
}

func TestMockPaymentService_ZeroDelay(t *testing.T) {
	clock := newFakeClock(testNow)
	service := NewMockPaymentService(0, clock, logger.Discard())

	result, err := service.ProcessPayment(context.Background(), dec("0"), PaymentBillingInfo{})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Empty(t, clock.waited)
}

func TestMockPaymentService_Cancelled(t *testing.T) {
	clock := &stuckClock{fakeClock: fakeClock{now: testNow}}
	service := NewMockPaymentService(time.Hour, clock, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := service.ProcessPayment(ctx, dec("10"), PaymentBillingInfo{})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("payment did not honour cancellation")
	}
}

func TestMockPaymentService_AlreadyCancelledWithoutDelay(t *testing.T) {
	service := NewMockPaymentService(0, newFakeClock(testNow), logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.ProcessPayment(ctx, dec("10"), PaymentBillingInfo{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockPaymentService_NegativeAmount(t *testing.T) {
	service := NewMockPaymentService(0, newFakeClock(testNow), logger.Discard())
	_, err := service.ProcessPayment(context.Background(), dec("-1"), PaymentBillingInfo{})
	assert.Error(t, err)
}
