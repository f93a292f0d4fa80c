package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"event-checkout/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultSessionTTL is how long an untouched checkout stays available
const DefaultSessionTTL = 30 * time.Minute

// SlotUpdate carries the holder fields to change. Nil fields are left untouched.
type SlotUpdate struct {
	TicketTypeID *string `json:"ticket_type_id,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Company      *string `json:"company,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`
}

func (u SlotUpdate) fields() map[models.HolderField]*string {
	return map[models.HolderField]*string{
		models.FieldFirstName: u.FirstName,
		models.FieldLastName:  u.LastName,
		models.FieldEmail:     u.Email,
		models.FieldPhone:     u.Phone,
		models.FieldCompany:   u.Company,
		models.FieldJobTitle:  u.JobTitle,
	}
}

// PurchaseResult is returned by a successful submit.
// DroppedCoupon is set when the applied coupon was no longer valid at payment time.
type PurchaseResult struct {
	Session       *models.CheckoutSession  `json:"session"`
	Payment       *PaymentResult           `json:"payment"`
	Tickets       []models.PurchasedTicket `json:"tickets"`
	Warnings      []IssuanceWarning        `json:"warnings,omitempty"`
	DroppedCoupon *models.CouponError      `json:"dropped_coupon,omitempty"`
}

// CheckoutServiceConfig wires the collaborators of a CheckoutService
type CheckoutServiceConfig struct {
	Catalog    models.Catalog
	Event      models.Event
	Coupons    *CouponService
	Payments   PaymentService
	Issuer     *TicketIssuer
	Clock      Clock
	SessionTTL time.Duration
	Metrics    *Metrics
	Logger     *slog.Logger
}

// CheckoutService keeps in-memory checkout sessions and drives them to issued tickets
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[string]*models.CheckoutSession
	// captured payments of sessions whose tickets are not issued yet
	captured map[string]*PaymentResult

	catalog   models.Catalog
	event     models.Event
	allocator *TicketAllocator
	coupons   *CouponService
	payments  PaymentService
	issuer    *TicketIssuer
	clock     Clock
	ttl       time.Duration
	metrics   *Metrics
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(cfg CheckoutServiceConfig) (*CheckoutService, error) {
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := cfg.Event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	if cfg.Coupons == nil || cfg.Payments == nil || cfg.Issuer == nil {
		return nil, errors.New("checkout service requires coupon, payment and issuer services")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &CheckoutService{
		sessions:  make(map[string]*models.CheckoutSession),
		captured:  make(map[string]*PaymentResult),
		catalog:   cfg.Catalog,
		event:     cfg.Event,
		allocator: NewTicketAllocator(cfg.Catalog),
		coupons:   cfg.Coupons,
		payments:  cfg.Payments,
		issuer:    cfg.Issuer,
		clock:     cfg.Clock,
		ttl:       cfg.SessionTTL,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}, nil
}

// Catalog returns the ticket types on sale
func (s *CheckoutService) Catalog() models.Catalog {
	out := make(models.Catalog, len(s.catalog))
	for i, tt := range s.catalog {
		out[i] = tt.Snapshot()
	}
	return out
}

// Event returns the event tickets are issued for
func (s *CheckoutService) Event() models.Event {
	return s.event
}

// Start opens a checkout for the given selection
func (s *CheckoutService) Start(selection models.Selection, policy models.AllocationPolicy) (*models.CheckoutSession, error) {
	if policy == "" {
		policy = models.PolicyUnassigned
	}

	slots, err := s.allocator.InitSlots(selection, policy)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &models.CheckoutSession{
		ID:        uuid.New().String(),
		Policy:    policy,
		Selection: selection.Clone(),
		Slots:     slots,
		Coupon:    models.CouponState{Discount: decimal.Zero},
		Status:    models.CheckoutOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.refreshSummary(session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpired(now)
	s.sessions[session.ID] = session

	s.logger.Info("checkout started", "session_id", session.ID, "tickets", len(slots), "policy", policy)
	return session.Clone(), nil
}

// Get returns a copy of the session
func (s *CheckoutService) Get(id string) (*models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Cancel discards the session and everything entered into it
func (s *CheckoutService) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return err
	}
	if session.HoldsPayment() {
		return statusError(session)
	}

	delete(s.sessions, id)
	s.logger.Info("checkout cancelled", "session_id", id)
	return nil
}

// UpdateSlot changes the ticket type and/or holder details of one slot
func (s *CheckoutService) UpdateSlot(id, slotID string, update SlotUpdate) (*models.CheckoutSession, error) {
	return s.mutate(id, func(session *models.CheckoutSession) error {
		index := findSlot(session.Slots, slotID)
		if index < 0 {
			return fmt.Errorf("slot %q: %w", slotID, models.ErrSlotNotFound)
		}

		slots := session.Slots
		if update.TicketTypeID != nil && *update.TicketTypeID != slots[index].TicketTypeID {
			if session.Policy == models.PolicyPreAssigned {
				return fmt.Errorf("ticket types are fixed for this checkout: %w", models.ErrInvalidInput)
			}
			assigned, err := s.allocator.AssignType(slots, slotID, *update.TicketTypeID, session.Selection)
			if err != nil {
				return err
			}
			slots = assigned
		} else {
			slots = append([]models.HolderSlot(nil), slots...)
		}

		for field, value := range update.fields() {
			if value == nil {
				continue
			}
			if err := slots[index].Set(field, *value); err != nil {
				return err
			}
		}

		session.Slots = slots
		return nil
	})
}

// AvailableTypes lists the ticket types slotID may still choose
func (s *CheckoutService) AvailableTypes(id, slotID string) ([]models.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if findSlot(session.Slots, slotID) < 0 {
		return nil, fmt.Errorf("slot %q: %w", slotID, models.ErrSlotNotFound)
	}

	return s.allocator.AvailableTypesFor(session.Slots, slotID, session.Selection), nil
}

// CopyToAll copies one holder field from the slot at sourceIndex to every slot
func (s *CheckoutService) CopyToAll(id string, sourceIndex int, field models.HolderField) (*models.CheckoutSession, error) {
	return s.mutate(id, func(session *models.CheckoutSession) error {
		slots, err := s.allocator.CopyToAll(session.Slots, sourceIndex, field)
		if err != nil {
			return err
		}
		session.Slots = slots
		return nil
	})
}

// ApplyCoupon evaluates code against the session's purchase.
// A rejected code is recorded on the session with a zero discount and returned as
// a *models.CouponError alongside the updated session.
func (s *CheckoutService) ApplyCoupon(id, code string) (*models.CheckoutSession, error) {
	var couponErr error
	session, err := s.mutate(id, func(session *models.CheckoutSession) error {
		couponErr = s.evaluateCoupon(session, code)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, couponErr
}

// RemoveCoupon clears the coupon, its discount and any coupon error
func (s *CheckoutService) RemoveCoupon(id string) (*models.CheckoutSession, error) {
	return s.mutate(id, func(session *models.CheckoutSession) error {
		session.Coupon = models.CouponState{Discount: decimal.Zero}
		return nil
	})
}

// Submit validates the session, takes payment and issues tickets.
// Nothing is charged or issued unless every slot validates. When issuance fails
// after payment the session stays paid, and submitting again only retries issuance.
func (s *CheckoutService) Submit(ctx context.Context, id string) (*PurchaseResult, error) {
	started := s.clock.Now()
	log := s.logger.With("session_id", id)

	s.mu.Lock()
	session, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !session.IsOpen() && !session.IsPaid() {
		s.mu.Unlock()
		return nil, statusError(session)
	}

	payment := s.captured[id]
	var dropped *models.CouponError
	if payment == nil {
		if result := s.allocator.ValidateAllocation(session.Slots, session.Selection); !result.Valid {
			s.mu.Unlock()
			s.metrics.checkoutFinished("invalid", s.clock.Now().Sub(started))
			log.Info("checkout rejected", "allocation_errors", len(result.AllocationErrors), "field_errors", len(result.FieldErrors))
			return nil, result.Err()
		}

		// Coupons are time-bound, so evaluate again at the moment of purchase
		if session.Coupon.Applied() {
			if err := s.evaluateCoupon(session, session.Coupon.Code); err != nil {
				errors.As(err, &dropped)
				log.Warn("coupon no longer valid at submit", "code", session.Coupon.Code, "error", err)
			}
		}
		if err := s.refreshSummary(session); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	session.Status = models.CheckoutProcessing
	holders := append([]models.HolderSlot(nil), session.Slots...)
	total := session.Summary.Total
	s.mu.Unlock()

	if payment == nil {
		billing := PaymentBillingInfo{
			Email: holders[0].Email,
			Name:  holders[0].FullName(),
			Phone: holders[0].Phone,
		}

		paymentStarted := s.clock.Now()
		payment, err = s.payments.ProcessPayment(ctx, total, billing)
		s.metrics.paymentFinished(s.clock.Now().Sub(paymentStarted))
		if err == nil && !payment.Succeeded() {
			err = fmt.Errorf("payment status %q: %s", payment.Status, payment.ErrorMessage)
		}
		if err != nil {
			s.setStatus(id, models.CheckoutOpen)
			s.metrics.checkoutFinished("payment_failed", s.clock.Now().Sub(started))
			log.Error("payment failed", "error", err)
			return nil, fmt.Errorf("%w: %w", models.ErrPaymentFailed, err)
		}

		s.mu.Lock()
		s.captured[id] = payment
		session.PaymentID = payment.PaymentID
		s.mu.Unlock()
	} else {
		log.Info("retrying ticket issuance", "payment_id", payment.PaymentID)
	}

	issued, err := s.issuer.Issue(holders, s.catalog, s.event)
	if err != nil {
		s.setStatus(id, models.CheckoutPaid)
		s.metrics.checkoutFinished("issue_failed", s.clock.Now().Sub(started))
		log.Error("ticket issuance failed", "payment_id", payment.PaymentID, "error", err)
		return nil, fmt.Errorf("%w: %w", models.ErrIssuanceFailed, err)
	}

	s.mu.Lock()
	session.Status = models.CheckoutCompleted
	session.Tickets = issued.Tickets
	session.ExpiresAt = s.clock.Now().Add(s.ttl)
	delete(s.captured, id)
	snapshot := session.Clone()
	s.mu.Unlock()

	s.metrics.checkoutFinished("completed", s.clock.Now().Sub(started))
	log.Info("checkout completed", "payment_id", payment.PaymentID, "tickets", len(issued.Tickets), "total", total.StringFixed(2))

	return &PurchaseResult{
		Session:       snapshot,
		Payment:       payment,
		Tickets:       snapshot.Tickets,
		Warnings:      issued.Warnings,
		DroppedCoupon: dropped,
	}, nil
}

// FindTicket returns an issued ticket of the session by number
func (s *CheckoutService) FindTicket(id, ticketNumber string) (models.PurchasedTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return models.PurchasedTicket{}, err
	}
	ticket, ok := session.FindTicket(ticketNumber)
	if !ok {
		return models.PurchasedTicket{}, fmt.Errorf("ticket %q: %w", ticketNumber, models.ErrTicketNotFound)
	}
	return ticket, nil
}

// mutate applies fn to an open session under the lock and returns a copy of the result
func (s *CheckoutService) mutate(id string, fn func(session *models.CheckoutSession) error) (*models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, statusError(session)
	}

	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.refreshSummary(session); err != nil {
		return nil, err
	}
	session.ExpiresAt = s.clock.Now().Add(s.ttl)

	return session.Clone(), nil
}

// evaluateCoupon records the outcome of code on session. Callers hold the lock.
func (s *CheckoutService) evaluateCoupon(session *models.CheckoutSession, code string) error {
	subtotal, err := Subtotal(session.Selection, s.catalog)
	if err != nil {
		return err
	}

	normalized := models.NormalizeCouponCode(code)
	discount, err := s.coupons.ApplyCoupon(normalized, subtotal, session.Selection)
	if err != nil {
		state := models.CouponState{Code: normalized, Discount: decimal.Zero, Error: err.Error()}
		var ce *models.CouponError
		if errors.As(err, &ce) {
			state.Reason = string(ce.Reason)
		}
		session.Coupon = state
		return err
	}

	session.Coupon = models.CouponState{Code: normalized, Discount: discount}
	return nil
}

func (s *CheckoutService) refreshSummary(session *models.CheckoutSession) error {
	summary, err := Quote(session.Selection, s.catalog, session.Coupon.Discount)
	if err != nil {
		return err
	}
	session.Summary = summary
	return nil
}

func (s *CheckoutService) setStatus(id string, status models.CheckoutStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		session.Status = status
	}
}

// statusError explains why a session that is not open refused a change
func statusError(session *models.CheckoutSession) error {
	switch {
	case session.IsCompleted():
		return models.ErrCheckoutCompleted
	case session.IsPaid():
		return models.ErrCheckoutPaid
	default:
		return models.ErrCheckoutInProgress
	}
}

// lookup returns the live session for id. Callers hold the lock.
func (s *CheckoutService) lookup(id string) (*models.CheckoutSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if !session.HoldsPayment() && session.IsExpired(s.clock.Now()) {
		delete(s.sessions, id)
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

func (s *CheckoutService) pruneExpired(now time.Time) {
	for id, session := range s.sessions {
		if !session.HoldsPayment() && session.IsExpired(now) {
			delete(s.sessions, id)
		}
	}
}
