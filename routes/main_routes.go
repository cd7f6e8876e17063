package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/shop_backoffice/config"
	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/HSouheill/shop_backoffice/middleware"
	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/HSouheill/shop_backoffice/websocket"
)

// Dependencies is everything the HTTP layer needs. Nil Cache, Mailer, Hub,
// Metrics and RateLimiter disable the corresponding feature.
type Dependencies struct {
	Settings    config.Settings
	Store       *repositories.Store
	Disk        storage.Disk
	Cache       *services.CategoryCache
	Gateway     services.PaymentGateway
	Crypto      services.PaymentConfirmationProvider
	Mailer      services.Mailer
	Hub         *websocket.Hub
	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter
}

func (d Dependencies) publisher() controllers.EventPublisher {
	if d.Hub == nil {
		return nil
	}
	return d.Hub
}

// NewServer builds the echo instance with middleware and every route.
func NewServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(deps.Settings.CORSAllowedOrigins)))
	e.Use(echoMiddleware.Secure())
	if deps.RateLimiter != nil {
		e.Use(deps.RateLimiter.RateLimit())
	}
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: deps.Settings.CORSAllowedOrigins,
		AllowInlineJS:  deps.Settings.IsDevelopment(),
	}))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
		e.GET("/metrics", deps.Metrics.Handler())
	}

	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "healthy",
			Data:    map[string]interface{}{"time": time.Now().UTC()},
		})
	})

	RegisterFileRoutes(e, deps.Disk)
	RegisterCategoryRoutes(e, deps)
	RegisterOrderRoutes(e, deps)
	RegisterCryptoRoutes(e, deps)
	RegisterAdminRoutes(e, deps)

	return e
}
