package handlers

import (
	"net/http"

	"event-checkout/internal/models"
	"event-checkout/internal/services"
)

// EventHandler serves the event details and the ticket catalog
type EventHandler struct {
	checkoutService services.CheckoutServiceInterface
}

// NewEventHandler creates a new event handler
func NewEventHandler(checkoutService services.CheckoutServiceInterface) *EventHandler {
	return &EventHandler{checkoutService: checkoutService}
}

// EventResponse describes the event on sale
type EventResponse struct {
	Event       models.Event        `json:"event"`
	DateRange   string              `json:"date_range"`
	MultiDay    bool                `json:"multi_day"`
	TicketTypes []models.TicketType `json:"ticket_types"`
}

// GetEvent returns the event and its ticket types in catalog order
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event := h.checkoutService.Event()
	writeSuccess(w, http.StatusOK, "", EventResponse{
		Event:       event,
		DateRange:   event.DateRange(),
		MultiDay:    event.IsMultiDay(),
		TicketTypes: h.checkoutService.Catalog(),
	})
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", nil)
}
