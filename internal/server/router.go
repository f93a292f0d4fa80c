package server

import (
	"log/slog"
	"net/http"

	"event-checkout/internal/handlers"
	"event-checkout/internal/middleware"
	"event-checkout/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	Checkout      services.CheckoutServiceInterface
	Documents     *services.TicketDocumentService
	Store         sessions.Store
	Logger        *slog.Logger
	Registry      *prometheus.Registry
	CouponLimiter *middleware.AttemptRateLimiter
	CORS          middleware.CORSConfig
}

// NewRouter wires handlers and middleware into a chi router
func NewRouter(cfg RouterConfig) http.Handler {
	checkoutHandler := handlers.NewCheckoutHandler(cfg.Checkout, cfg.Documents, cfg.Store, cfg.Logger)
	eventHandler := handlers.NewEventHandler(cfg.Checkout)

	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(cfg.Logger))
	r.Use(middleware.ErrorHandlingMiddleware(cfg.Logger))
	if cfg.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Registry).Middleware)
	}
	r.Use(middleware.CORSMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeadersMiddleware)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", handlers.Health)
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/event", eventHandler.GetEvent)

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.StartCheckout)
			r.Get("/", checkoutHandler.GetCheckout)
			r.Delete("/", checkoutHandler.CancelCheckout)

			r.Put("/slots/{slotID}", checkoutHandler.UpdateSlot)
			r.Get("/slots/{slotID}/types", checkoutHandler.AvailableTypes)
			r.Post("/slots/{index}/copy", checkoutHandler.CopyToAll)

			r.Group(func(r chi.Router) {
				if cfg.CouponLimiter != nil {
					r.Use(middleware.RateLimit(cfg.CouponLimiter))
				}
				r.Post("/coupon", checkoutHandler.ApplyCoupon)
			})
			r.Delete("/coupon", checkoutHandler.RemoveCoupon)

			r.Post("/submit", checkoutHandler.Submit)
			r.Get("/tickets/{ticketNumber}/download", checkoutHandler.DownloadTicket)
		})
	})

	return r
}
