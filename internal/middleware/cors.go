package middleware

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CORSConfig describes which browser origins may drive the checkout API
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows any origin to use the checkout cookie
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

type corsPolicy struct {
	anyOrigin   bool
	exact       map[string]bool
	suffixes    []string
	methods     string
	headers     string
	exposed     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(config CORSConfig) *corsPolicy {
	p := &corsPolicy{
		exact:       make(map[string]bool),
		methods:     strings.Join(config.AllowedMethods, ", "),
		headers:     strings.Join(config.AllowedHeaders, ", "),
		exposed:     strings.Join(config.ExposedHeaders, ", "),
		credentials: config.AllowCredentials,
	}
	if config.MaxAge > 0 {
		p.maxAge = strconv.Itoa(config.MaxAge)
	}

	for _, origin := range config.AllowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		switch {
		case origin == "":
		case origin == "*":
			p.anyOrigin = true
		case strings.HasPrefix(origin, "*."):
			// "*.example.com" matches subdomains only, never example.com itself
			p.suffixes = append(p.suffixes, origin[1:])
		default:
			p.exact[strings.TrimSuffix(origin, "/")] = true
		}
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	origin = strings.ToLower(origin)
	if p.anyOrigin || p.exact[origin] {
		return true
	}
	if len(p.suffixes) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// CORSMiddleware answers preflight requests and decorates cross-origin responses.
// The origin is echoed rather than "*" because the checkout cookie needs credentials.
func CORSMiddleware(config CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			allowed := policy.allows(origin)

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if !allowed {
					writeJSONError(w, http.StatusForbidden, "Origin not allowed")
					return
				}
				h.Set("Access-Control-Allow-Origin", origin)
				if policy.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", policy.methods)
				h.Set("Access-Control-Allow-Headers", policy.headers)
				if policy.maxAge != "" {
					h.Set("Access-Control-Max-Age", policy.maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				if policy.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if policy.exposed != "" {
					h.Set("Access-Control-Expose-Headers", policy.exposed)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware adds security headers. Checkout state is per buyer, so nothing is cached.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")

		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
