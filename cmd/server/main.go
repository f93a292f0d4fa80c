package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"event-checkout/internal/config"
	"event-checkout/internal/logger"
	"event-checkout/internal/middleware"
	"event-checkout/internal/models"
	"event-checkout/internal/server"
	"event-checkout/internal/services"
	"event-checkout/internal/utils"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)

	// Create session store; the cookie only carries the checkout id
	sessionKeys, err := utils.DeriveSessionKeys(cfg.Session.Secret, nil)
	if err != nil {
		log.Error("failed to derive session keys", "error", err)
		os.Exit(1)
	}
	sessionStore := sessions.NewCookieStore(sessionKeys.HashKey, sessionKeys.BlockKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAgeSeconds,
		HttpOnly: true,
		Secure:   cfg.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize services
	clock := services.SystemClock{}

	couponRegistry, err := services.NewCouponRegistry(services.DefaultCoupons()...)
	if err != nil {
		log.Error("failed to load coupons", "error", err)
		os.Exit(1)
	}
	couponService := services.NewCouponService(couponRegistry, clock, metrics, log)

	paymentService := services.NewMockPaymentService(cfg.Payment.PaymentDelay(), clock, log)

	qrEncoder := services.NewPNGQREncoder(cfg.QR.Size, cfg.QR.Margin)
	ticketNumbers := services.NewTicketNumberGenerator(clock, nil)
	issuer := services.NewTicketIssuer(qrEncoder, clock, ticketNumbers, metrics, log)

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceConfig{
		Catalog: services.DefaultCatalog(),
		Event: models.Event{
			Name:      cfg.Event.Name,
			StartDate: cfg.Event.StartDate,
			EndDate:   cfg.Event.EndDate,
			Venue:     cfg.Event.Venue,
		},
		Coupons:    couponService,
		Payments:   paymentService,
		Issuer:     issuer,
		Clock:      clock,
		SessionTTL: cfg.Session.SessionTTL(),
		Metrics:    metrics,
		Logger:     log,
	})
	if err != nil {
		log.Error("failed to initialize checkout service", "error", err)
		os.Exit(1)
	}

	couponLimiter := middleware.NewAttemptRateLimiter(cfg.Coupon.MaxAttempts, cfg.Coupon.Window())
	defer couponLimiter.Close()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	router := server.NewRouter(server.RouterConfig{
		Checkout:      checkoutService,
		Documents:     services.NewTicketDocumentService(),
		Store:         sessionStore,
		Logger:        log,
		Registry:      registry,
		CouponLimiter: couponLimiter,
		CORS:          corsConfig,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("checkout ready",
		"event", cfg.Event.Name,
		"ticket_types", len(checkoutService.Catalog()),
		"coupons", len(couponRegistry.List()),
		"env", cfg.Server.Env,
	)

	if err := server.New(cfg.Server.Addr(), router, log).Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
