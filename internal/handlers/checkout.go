package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"event-checkout/internal/logger"
	"event-checkout/internal/models"
	"event-checkout/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie carrying the checkout id
	SessionName = "checkout"

	sessionCheckoutKey = "checkout_id"
	maxRequestBytes    = 1 << 20
)

// CheckoutHandler exposes the checkout flow as a JSON API
type CheckoutHandler struct {
	checkoutService services.CheckoutServiceInterface
	documents       *services.TicketDocumentService
	store           sessions.Store
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	checkoutService services.CheckoutServiceInterface,
	documents *services.TicketDocumentService,
	store sessions.Store,
	log *slog.Logger,
) *CheckoutHandler {
	if documents == nil {
		documents = services.NewTicketDocumentService()
	}
	if log == nil {
		log = logger.Get()
	}
	return &CheckoutHandler{
		checkoutService: checkoutService,
		documents:       documents,
		store:           store,
		logger:          log,
	}
}

// StartCheckoutRequest is the body of POST /api/checkout
type StartCheckoutRequest struct {
	Selection models.Selection        `json:"selection"`
	Policy    models.AllocationPolicy `json:"policy"`
}

// CopyFieldRequest is the body of POST /api/checkout/slots/{index}/copy
type CopyFieldRequest struct {
	Field string `json:"field"`
}

// CouponRequest is the body of POST /api/checkout/coupon
type CouponRequest struct {
	Code string `json:"code"`
}

// PurchaseResponse is returned once tickets have been issued
type PurchaseResponse struct {
	Session  *models.CheckoutSession  `json:"session"`
	Payment  *services.PaymentResult  `json:"payment"`
	Tickets  []models.PurchasedTicket `json:"tickets"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// StartCheckout opens a checkout for a ticket selection and binds it to the caller's cookie
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req StartCheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.Start(req.Selection, req.Policy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cookie, err := h.store.Get(r, SessionName)
	if err != nil {
		// A stale or tampered cookie is replaced rather than rejected
		h.logger.Debug("discarding unreadable checkout cookie", "error", err)
	}
	if previous, ok := cookie.Values[sessionCheckoutKey].(string); ok && previous != "" && previous != session.ID {
		if err := h.checkoutService.Cancel(previous); err != nil && !errors.Is(err, models.ErrSessionNotFound) {
			h.logger.Debug("previous checkout left in place", "session_id", previous, "error", err)
		}
	}
	cookie.Values[sessionCheckoutKey] = session.ID
	if err := cookie.Save(r, w); err != nil {
		writeError(w, r, fmt.Errorf("failed to save session: %w", err))
		return
	}

	writeSuccess(w, http.StatusCreated, "Checkout started", session)
}

// GetCheckout returns the caller's checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", session)
}

// CancelCheckout discards the caller's checkout and clears the cookie
func (h *CheckoutHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.checkoutService.Cancel(id); err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		writeError(w, r, err)
		return
	}

	cookie, _ := h.store.Get(r, SessionName)
	delete(cookie.Values, sessionCheckoutKey)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		h.logger.Warn("failed to clear checkout cookie", "error", err)
	}

	writeSuccess(w, http.StatusOK, "Checkout cancelled", nil)
}

// UpdateSlot changes the ticket type or holder details of one slot
func (h *CheckoutHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var update services.SlotUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.UpdateSlot(id, chi.URLParam(r, "slotID"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", session)
}

// AvailableTypes lists the ticket types a slot may still be assigned
func (h *CheckoutHandler) AvailableTypes(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	types, err := h.checkoutService.AvailableTypes(id, chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if types == nil {
		types = []models.TicketType{}
	}

	writeSuccess(w, http.StatusOK, "", types)
}

// CopyToAll copies one holder field from the slot at {index} to every slot
func (h *CheckoutHandler) CopyToAll(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, fmt.Errorf("slot index: %w", models.ErrInvalidInput))
		return
	}

	var req CopyFieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	field, err := models.ParseHolderField(req.Field)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.CopyToAll(id, index, field)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", session)
}

// ApplyCoupon evaluates a coupon code. A rejected code still returns the session so
// the client can show the recorded coupon error next to the zero discount.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req CouponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.ApplyCoupon(id, req.Code)
	var cerr *models.CouponError
	switch {
	case err == nil:
		writeSuccess(w, http.StatusOK, "Coupon applied", session)
	case errors.As(err, &cerr) && session != nil:
		writeJSONResponse(w, http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Message: cerr.Error(),
			Data:    session,
			Errors:  map[string][]string{"coupon": {cerr.Error()}},
		})
	default:
		writeError(w, r, err)
	}
}

// RemoveCoupon clears the coupon and its discount
func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkoutService.RemoveCoupon(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Coupon removed", session)
}

// Submit validates every holder, takes payment and issues the tickets
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.checkoutService.Submit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := PurchaseResponse{
		Session: result.Session,
		Payment: result.Payment,
		Tickets: result.Tickets,
	}
	if dropped := result.DroppedCoupon; dropped != nil {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("Coupon %s was not applied: %s", dropped.Code, dropped.Error()))
	}
	for _, warning := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warning.Error())
	}

	writeSuccess(w, http.StatusOK, "Payment successful", resp)
}

// DownloadTicket serves the plain-text document of one issued ticket
func (h *CheckoutHandler) DownloadTicket(w http.ResponseWriter, r *http.Request) {
	id, err := h.checkoutID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ticket, err := h.checkoutService.FindTicket(id, chi.URLParam(r, "ticketNumber"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	content := h.documents.Render(ticket)
	w.Header().Set("Content-Type", h.documents.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.documents.FileName(ticket)))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// checkoutID reads the checkout bound to the caller's cookie
func (h *CheckoutHandler) checkoutID(r *http.Request) (string, error) {
	cookie, err := h.store.Get(r, SessionName)
	if err != nil {
		return "", models.ErrSessionNotFound
	}
	id, ok := cookie.Values[sessionCheckoutKey].(string)
	if !ok || id == "" {
		return "", models.ErrSessionNotFound
	}
	return id, nil
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, models.ErrInvalidInput)
	}
	return nil
}
