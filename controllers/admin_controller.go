package controllers

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/shop_backoffice/middleware"
	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginAttempts = 5
	loginLockout     = 30 * time.Minute
)

// AdminCredentials is the single back-office account.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	JWTSecret    string
}

type loginAttempt struct {
	count       int
	lastAttempt time.Time
}

type AdminController struct {
	Credentials AdminCredentials
	Reconciler  *services.OrderReconciler
	Preferences repositories.PreferencesRepository
	Hub         *websocket.Hub
	Publisher   EventPublisher

	loginAttempts   map[string]loginAttempt
	loginAttemptsMu sync.Mutex
}

func NewAdminController(creds AdminCredentials, reconciler *services.OrderReconciler, prefs repositories.PreferencesRepository, hub *websocket.Hub) *AdminController {
	ac := &AdminController{
		Credentials:   creds,
		Reconciler:    reconciler,
		Preferences:   prefs,
		Hub:           hub,
		Publisher:     noopPublisher{},
		loginAttempts: make(map[string]loginAttempt),
	}
	if hub != nil {
		ac.Publisher = hub
	}
	return ac
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}

func (ac *AdminController) lockedOut(email string) bool {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()
	attempt, ok := ac.loginAttempts[email]
	return ok && attempt.count >= maxLoginAttempts && time.Since(attempt.lastAttempt) < loginLockout
}

func (ac *AdminController) recordFailure(email string) {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()
	attempt := ac.loginAttempts[email]
	attempt.count++
	attempt.lastAttempt = time.Now()
	ac.loginAttempts[email] = attempt
}

// Login exchanges the admin email and password for a JWT
func (ac *AdminController) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Email and password are required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if ac.lockedOut(email) {
		return jsonError(c, http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.")
	}

	if ac.Credentials.Email == "" || ac.Credentials.PasswordHash == "" {
		c.Logger().Error("Admin login attempted but ADMIN_EMAIL or ADMIN_PASSWORD_HASH is not set")
		return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if email != strings.ToLower(ac.Credentials.Email) ||
		bcrypt.CompareHashAndPassword([]byte(ac.Credentials.PasswordHash), []byte(req.Password)) != nil {
		ac.recordFailure(email)
		return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
	}

	ac.loginAttemptsMu.Lock()
	delete(ac.loginAttempts, email)
	ac.loginAttemptsMu.Unlock()

	token, expiresAt, err := middleware.GenerateJWT(ac.Credentials.JWTSecret, email)
	if err != nil {
		c.Logger().Errorf("Failed to generate token: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    LoginResponse{Token: token, ExpiresAt: expiresAt, Email: email},
	})
}

// ListOrders returns the reconciled order list
func (ac *AdminController) ListOrders(c echo.Context) error {
	view, err := services.ParseOrderView(c.QueryParam("view"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	page, limit := pagination(c)

	result, err := ac.Reconciler.List(c.Request().Context(), services.ListQuery{
		View:          view,
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		PaymentMethod: c.QueryParam("paymentMethod"),
		Search:        strings.TrimSpace(c.QueryParam("search")),
	})
	if err != nil {
		c.Logger().Errorf("Failed to reconcile orders: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch orders: "+err.Error())
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    result,
	})
}

// UpdateOrder edits a reconciled row through its own variant
func (ac *AdminController) UpdateOrder(c echo.Context) error {
	kind := models.OrderKind(c.Param("kind"))
	if kind != models.KindOrder && kind != models.KindTransaction {
		return jsonError(c, http.StatusBadRequest, "Kind must be order or transaction")
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid "+string(kind)+" ID")
	}

	var edit services.OrderEdit
	if err := c.Bind(&edit); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}

	updated, err := ac.Reconciler.Update(c.Request().Context(), kind, id, edit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEdit) {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		return storeError(c, err, "Order not found", "Failed to update order")
	}
	ac.Publisher.Publish(websocket.EventOrderUpdated, updated)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order updated successfully",
		Data:    updated,
	})
}

// GetPreferences returns the admin's saved dashboard state, or the defaults
func (ac *AdminController) GetPreferences(c echo.Context) error {
	owner := middleware.AdminEmail(c)
	prefs, err := ac.Preferences.Get(c.Request().Context(), owner)
	if errors.Is(err, repositories.ErrNotFound) {
		defaults := models.DefaultPreferences(owner)
		prefs, err = &defaults, nil
	}
	if err != nil {
		return storeError(c, err, "Preferences not found", "Failed to fetch preferences")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Preferences retrieved successfully",
		Data:    prefs,
	})
}

func (ac *AdminController) SavePreferences(c echo.Context) error {
	var prefs models.AdminPreferences
	if err := c.Bind(&prefs); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if _, err := services.ParseOrderView(prefs.OrdersView); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if prefs.PageSize < 0 || prefs.PageSize > maxPageSize {
		return jsonError(c, http.StatusBadRequest, "Invalid page size")
	}
	prefs.Owner = middleware.AdminEmail(c)
	if prefs.OpenMenus == nil {
		prefs.OpenMenus = []string{}
	}

	if err := ac.Preferences.Save(c.Request().Context(), &prefs); err != nil {
		return storeError(c, err, "Preferences not found", "Failed to save preferences")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Preferences saved successfully",
		Data:    prefs,
	})
}

// WebSocket subscribes the admin's dashboard to live events
func (ac *AdminController) WebSocket(c echo.Context) error {
	if ac.Hub == nil {
		return jsonError(c, http.StatusServiceUnavailable, "Live updates are not available")
	}
	return websocket.HandleWebSocket(c, ac.Hub, middleware.AdminEmail(c))
}
