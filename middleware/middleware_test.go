package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newProtectedServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/api/admin", JWTMiddleware(testSecret), RequireRole(RoleAdmin))
	g.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, AdminEmail(c))
	})
	return e
}

func TestJWTMiddlewareAcceptsHeaderAndQueryToken(t *testing.T) {
	e := newProtectedServer()
	token, expiresAt, err := GenerateJWT(testSecret, "admin@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/admin/whoami?token="+token, nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddlewareRejectsMissingAndForeignTokens(t *testing.T) {
	e := newProtectedServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := GenerateJWT("another-secret", "admin@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	e := newProtectedServer()
	claims := &JwtCustomClaims{
		Email:          "viewer@example.com",
		Role:           "viewer",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExpiredClaimsAreInvalid(t *testing.T) {
	claims := JwtCustomClaims{StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}}
	assert.Error(t, claims.Valid())
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/admin/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/uploads/*", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := map[int]int{}
	for i := 0; i < 8; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes[rec.Code]++
	}
	assert.Equal(t, 5, codes[http.StatusOK])
	assert.Equal(t, 3, codes[http.StatusTooManyRequests])

	// Static uploads are never limited, even for a blocked IP.
	req := httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Blocks lapse after the block duration.
	limiter.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	limiter.cleanupBlockedIPs()
	assert.Empty(t, limiter.blockedIPs)
	assert.Empty(t, limiter.ips)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter()
	start := time.Now()
	limiter.now = func() time.Time { return start }
	e := echo.New()
	e.Use(limiter.RateLimit())
	e.GET("/api/categories", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/api/admin/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// One IP exhausts the login limit while many others browse.
	for i := 0; i < 8; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		e.ServeHTTP(httptest.NewRecorder(), req)
	}
	for i := 0; i < 50; i++ {
		for _, target := range []string{"/api/categories", "/api/admin/login"} {
			method := http.MethodGet
			if target == "/api/admin/login" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, target, nil)
			req.RemoteAddr = fmt.Sprintf("10.1.0.%d:1234", i)
			e.ServeHTTP(httptest.NewRecorder(), req)
		}
	}
	require.Len(t, limiter.ips, 51)
	require.Len(t, limiter.ips["10.1.0.7"].limiters, 2)

	// Idle clients go first; the blocked one stays until its block lapses.
	limiter.now = func() time.Time { return start.Add(4 * time.Minute) }
	limiter.cleanupBlockedIPs()
	assert.Len(t, limiter.ips, 1)
	assert.Contains(t, limiter.ips, "10.0.0.1")

	limiter.now = func() time.Time { return start.Add(10 * time.Minute) }
	limiter.cleanupBlockedIPs()
	assert.Empty(t, limiter.ips)
	assert.Empty(t, limiter.blockedIPs)
}

func TestMetricsEndpointReportsRequests(t *testing.T) {
	m := NewMetrics()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/metrics", m.Handler())
	e.GET("/api/products/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/123", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `shop_http_requests_total{method="GET",path="/api/products/:id",status="204"} 1`), body)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{AllowedDomains: []string{"https://api.stripe.com"}}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' https://api.stripe.com")
}
