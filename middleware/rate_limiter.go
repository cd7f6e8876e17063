// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// visitor holds one limiter per route for a client IP.
type visitor struct {
	limiters map[string]*rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	ips            map[string]*visitor
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	idleTimeout    time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*visitor),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		idleTimeout:   3 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// Strict on login to slow down password guessing
			"/api/admin/login": {limit: rate.Every(2 * time.Second), burst: 5},
			// Crypto status is polled by the checkout page
			"/api/crypto/payments/:transactionId/status": {limit: rate.Every(50 * time.Millisecond), burst: 50},
		},
		now: time.Now,
	}
}

// Cleanup drops expired blocks and idle limiters every interval until done
// is closed.
func (r *RateLimiter) Cleanup(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.cleanupBlockedIPs()
		}
	}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			delete(r.ips, ip)
		}
	}
	for ip, v := range r.ips {
		if _, blocked := r.blockedIPs[ip]; blocked {
			continue
		}
		if now.Sub(v.lastSeen) > r.idleTimeout {
			delete(r.ips, ip)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Uploaded images and scrapes are not limited
			p := c.Request().URL.Path
			if strings.HasPrefix(p, "/uploads/") || p == "/metrics" {
				return next(c)
			}

			ip := c.RealIP()
			now := r.now()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, "IP address blocked due to too many requests", blockUntil)
				}
				// Block has expired - reset the limiter
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}

			limit, burst := r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[c.Path()]; ok {
				limit, burst = el.limit, el.burst
			}
			v, ok := r.ips[ip]
			if !ok {
				v = &visitor{limiters: make(map[string]*rate.Limiter)}
				r.ips[ip] = v
			}
			v.lastSeen = now
			limiter, ok := v.limiters[c.Path()]
			if !ok {
				limiter = rate.NewLimiter(limit, burst)
				v.limiters[c.Path()] = limiter
			}

			if !limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, "Too many requests", blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, message string, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: message,
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}
