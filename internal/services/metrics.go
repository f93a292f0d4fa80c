package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the checkout counters and histograms.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	couponAttempts  *prometheus.CounterVec
	ticketsIssued   *prometheus.CounterVec
	qrFailures      prometheus.Counter
	checkouts       *prometheus.CounterVec
	checkoutLatency prometheus.Histogram
	paymentLatency  prometheus.Histogram
}

// NewMetrics creates the checkout metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		couponAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "coupon_attempts_total",
			Help:      "Coupon evaluations by outcome.",
		}, []string{"outcome"}),
		ticketsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "tickets_issued_total",
			Help:      "Tickets issued by ticket type.",
		}, []string{"ticket_type"}),
		qrFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "qr_failures_total",
			Help:      "Tickets issued without a QR payload.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "submissions_total",
			Help:      "Checkout submissions by result.",
		}, []string{"result"}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to issued tickets.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10},
		}),
		paymentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "payment_duration_seconds",
			Help:      "Time spent in the payment step.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.couponAttempts,
			m.ticketsIssued,
			m.qrFailures,
			m.checkouts,
			m.checkoutLatency,
			m.paymentLatency,
		)
	}

	return m
}

func (m *Metrics) couponOutcome(outcome string) {
	if m == nil {
		return
	}
	m.couponAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ticketIssued(ticketTypeID string) {
	if m == nil {
		return
	}
	m.ticketsIssued.WithLabelValues(ticketTypeID).Inc()
}

func (m *Metrics) qrFailure() {
	if m == nil {
		return
	}
	m.qrFailures.Inc()
}

func (m *Metrics) checkoutFinished(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
	m.checkoutLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) paymentFinished(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.paymentLatency.Observe(elapsed.Seconds())
}
