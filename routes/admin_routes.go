package routes

import (
	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/HSouheill/shop_backoffice/middleware"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/labstack/echo/v4"
)

// RegisterAdminRoutes sets up login and the JWT-protected dashboard routes
func RegisterAdminRoutes(e *echo.Echo, deps Dependencies) {
	adminController := controllers.NewAdminController(
		controllers.AdminCredentials{
			Email:        deps.Settings.AdminEmail,
			PasswordHash: deps.Settings.AdminPasswordHash,
			JWTSecret:    deps.Settings.JWTSecret,
		},
		services.NewOrderReconciler(deps.Store),
		deps.Store.Preferences,
		deps.Hub,
	)

	e.POST("/api/admin/login", adminController.Login)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware(deps.Settings.JWTSecret))
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))

	admin.GET("/orders", adminController.ListOrders)
	admin.PUT("/orders/:kind/:id", adminController.UpdateOrder)
	admin.GET("/preferences", adminController.GetPreferences)
	admin.PUT("/preferences", adminController.SavePreferences)
	admin.GET("/ws", adminController.WebSocket)
}
