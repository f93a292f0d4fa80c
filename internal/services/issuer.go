package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"event-checkout/internal/models"

	"github.com/google/uuid"
)

// IssuanceWarning records a non-fatal problem with one issued ticket
type IssuanceWarning struct {
	TicketNumber string `json:"ticket_number"`
	SlotID       string `json:"slot_id"`
	Err          error  `json:"-"`
}

func (w IssuanceWarning) Error() string {
	return fmt.Sprintf("ticket %s: %v", w.TicketNumber, w.Err)
}

func (w IssuanceWarning) Unwrap() error {
	return w.Err
}

// IssueResult holds the tickets minted for one purchase
type IssueResult struct {
	Tickets  []models.PurchasedTicket `json:"tickets"`
	Warnings []IssuanceWarning        `json:"warnings,omitempty"`
}

// qrContent is the JSON document encoded into each ticket's QR code
type qrContent struct {
	TicketNumber string `json:"ticketNumber"`
	EventName    string `json:"eventName"`
	HolderName   string `json:"holderName"`
	HolderEmail  string `json:"holderEmail"`
	TicketType   string `json:"ticketType"`
	EventDate    string `json:"eventDate"`
	Venue        string `json:"venue"`
}

var errNoQREncoder = errors.New("no QR encoder configured")

// TicketIssuer mints purchased tickets for validated holders
type TicketIssuer struct {
	encoder QREncoder
	clock   Clock
	numbers *TicketNumberGenerator
	metrics *Metrics
	logger  *slog.Logger
}

// NewTicketIssuer creates a new ticket issuer
func NewTicketIssuer(encoder QREncoder, clock Clock, numbers *TicketNumberGenerator, metrics *Metrics, logger *slog.Logger) *TicketIssuer {
	if clock == nil {
		clock = SystemClock{}
	}
	if numbers == nil {
		numbers = NewTicketNumberGenerator(clock, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketIssuer{
		encoder: encoder,
		clock:   clock,
		numbers: numbers,
		metrics: metrics,
		logger:  logger,
	}
}

// Issue creates one ticket per holder, in holder order.
// Every holder must carry a ticket type from catalog; otherwise nothing is issued.
// A QR encoding failure leaves that ticket's QRPayload empty and adds a warning.
func (t *TicketIssuer) Issue(holders []models.HolderSlot, catalog models.Catalog, event models.Event) (*IssueResult, error) {
	if len(holders) == 0 {
		return nil, models.ErrEmptySelection
	}

	types := make([]models.TicketType, len(holders))
	for i, h := range holders {
		tt, ok := catalog.Find(h.TicketTypeID)
		if !ok {
			return nil, fmt.Errorf("holder %d (%s) ticket type %q: %w", i+1, h.SlotID, h.TicketTypeID, models.ErrTicketTypeNotFound)
		}
		types[i] = tt
	}

	purchasedAt := t.clock.Now()
	eventDate := event.DateRange()
	result := &IssueResult{Tickets: make([]models.PurchasedTicket, 0, len(holders))}

	for i, h := range holders {
		number, err := t.numbers.Next()
		if err != nil {
			return nil, err
		}

		ticket := models.PurchasedTicket{
			ID:           uuid.New().String(),
			TicketNumber: number,
			TicketType:   types[i].Snapshot(),
			HolderName:   h.FullName(),
			HolderEmail:  h.Email,
			EventName:    event.Name,
			EventDate:    eventDate,
			Venue:        event.Venue,
			PurchasedAt:  purchasedAt,
		}

		payload, err := t.qrPayload(ticket)
		if err != nil {
			warning := IssuanceWarning{TicketNumber: number, SlotID: h.SlotID, Err: err}
			result.Warnings = append(result.Warnings, warning)
			t.metrics.qrFailure()
			t.logger.Warn("ticket issued without QR code", "ticket_number", number, "slot_id", h.SlotID, "error", err)
		}
		ticket.QRPayload = payload

		result.Tickets = append(result.Tickets, ticket)
		t.metrics.ticketIssued(ticket.TicketType.ID)
	}

	t.logger.Info("tickets issued", "count", len(result.Tickets), "warnings", len(result.Warnings))
	return result, nil
}

func (t *TicketIssuer) qrPayload(ticket models.PurchasedTicket) (string, error) {
	if t.encoder == nil {
		return "", errNoQREncoder
	}

	content, err := json.Marshal(qrContent{
		TicketNumber: ticket.TicketNumber,
		EventName:    ticket.EventName,
		HolderName:   ticket.HolderName,
		HolderEmail:  ticket.HolderEmail,
		TicketType:   ticket.TicketType.Name,
		EventDate:    ticket.EventDate,
		Venue:        ticket.Venue,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode QR content: %w", err)
	}

	payload, err := t.encoder.Encode(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}
	return payload, nil
}
