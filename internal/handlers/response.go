package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"event-checkout/internal/logger"
	"event-checkout/internal/models"
)

// APIResponse is the envelope every JSON endpoint answers with
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeJSONResponse writes a JSON response
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSONResponse(w, statusCode, APIResponse{Success: true, Message: message, Data: data})
}

// writeError maps err onto a status code and error envelope
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	resp := APIResponse{Success: false, Message: messageForError(err)}

	var verrs *models.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Errors = verrs.Messages()
	}
	var cerr *models.CouponError
	if errors.As(err, &cerr) {
		resp.Errors = map[string][]string{"coupon": {cerr.Error()}}
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.FromContext(r.Context(), logger.Get()).Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)

	writeJSONResponse(w, status, resp)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCheckoutInProgress),
		errors.Is(err, models.ErrCheckoutCompleted),
		errors.Is(err, models.ErrCheckoutPaid):
		return http.StatusConflict
	case errors.Is(err, models.ErrIssuanceFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrCouponNotFound),
		errors.Is(err, models.ErrCouponExpired),
		errors.Is(err, models.ErrCouponExhausted),
		errors.Is(err, models.ErrCouponNotApplicable),
		errors.Is(err, models.ErrCouponBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptySelection),
		errors.Is(err, models.ErrTicketTypeNotFound),
		errors.Is(err, models.ErrTypeUnavailable),
		errors.Is(err, models.ErrUnknownField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageForError(err error) string {
	var cerr *models.CouponError
	switch {
	case errors.As(err, &cerr):
		return cerr.Error()
	case errors.Is(err, models.ErrValidation):
		return "Please correct the highlighted ticket details"
	case errors.Is(err, models.ErrSessionNotFound):
		return "Checkout session not found or expired"
	case errors.Is(err, models.ErrPaymentFailed):
		return "Payment failed. Please try again."
	case errors.Is(err, models.ErrIssuanceFailed):
		return "Payment received but tickets could not be issued. Please submit again."
	case errors.Is(err, models.ErrCheckoutPaid):
		return "Payment received. Submit again to issue your tickets."
	case statusForError(err) == http.StatusInternalServerError:
		return "Internal Server Error"
	default:
		return err.Error()
	}
}
