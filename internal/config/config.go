package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EventDateLayout is the layout of EVENT_START_DATE and EVENT_END_DATE
const EventDateLayout = "2006-01-02"

type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Event   EventConfig
	Payment PaymentConfig
	QR      QRConfig
	Coupon  CouponConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string
}

type SessionConfig struct {
	Secret        string
	MaxAgeSeconds int
	TTLMinutes    int
}

type EventConfig struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Venue     string
}

type PaymentConfig struct {
	DelayMillis int
}

type QRConfig struct {
	Size   int
	Margin int
}

// CouponConfig bounds how many coupon codes one client may try per window
type CouponConfig struct {
	MaxAttempts   int
	WindowSeconds int
}

type LogConfig struct {
	Level  string
	Format string
}

// Addr is the listen address
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether secure cookies should be enforced
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// PaymentDelay is the simulated payment latency
func (c PaymentConfig) PaymentDelay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// SessionTTL is how long an idle checkout lives
func (c SessionConfig) SessionTTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Window is the coupon attempt window
func (c CouponConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	startDate, err := getEnvAsDate("EVENT_START_DATE", "2025-06-10")
	if err != nil {
		return nil, err
	}
	endDate, err := getEnvAsDate("EVENT_END_DATE", "2025-06-18")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "localhost"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			MaxAgeSeconds: getEnvAsInt("SESSION_MAX_AGE", 86400),
			TTLMinutes:    getEnvAsInt("CHECKOUT_TTL_MINUTES", 30),
		},
		Event: EventConfig{
			Name:      getEnv("EVENT_NAME", "LP-GP Summit: Investing in Emerging Market Startups (Virtual)"),
			StartDate: startDate,
			EndDate:   endDate,
			Venue:     getEnv("EVENT_VENUE", "Virtual Event"),
		},
		Payment: PaymentConfig{
			DelayMillis: getEnvAsInt("PAYMENT_DELAY_MS", 2000),
		},
		QR: QRConfig{
			Size:   getEnvAsInt("QR_SIZE", 200),
			Margin: getEnvAsInt("QR_MARGIN", 2),
		},
		Coupon: CouponConfig{
			MaxAttempts:   getEnvAsInt("COUPON_MAX_ATTEMPTS", 10),
			WindowSeconds: getEnvAsInt("COUPON_WINDOW_SECONDS", 60),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Server.IsProduction() && c.Session.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.Payment.DelayMillis < 0 {
		return fmt.Errorf("PAYMENT_DELAY_MS cannot be negative")
	}
	if c.QR.Size <= 0 {
		return fmt.Errorf("QR_SIZE must be positive")
	}
	if c.Coupon.MaxAttempts <= 0 || c.Coupon.WindowSeconds <= 0 {
		return fmt.Errorf("coupon rate limit must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsDate(key, defaultValue string) (time.Time, error) {
	value := getEnv(key, defaultValue)
	date, err := time.Parse(EventDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", key, value)
	}
	return date, nil
}
