// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/labstack/echo/v4"
)

// RequireRole checks that the authenticated user has one of the allowed roles
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetUserFromToken(c)
			if claims == nil || claims.Role == "" {
				c.Logger().Error("Authentication failed: role not found")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			for _, role := range allowedRoles {
				if claims.Role == role {
					return next(c)
				}
			}

			c.Logger().Errorf("Access denied for role: %s, allowed roles: %v", claims.Role, allowedRoles)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your role",
			})
		}
	}
}

// AdminEmail returns the email of the authenticated admin, or "".
func AdminEmail(c echo.Context) string {
	if claims := GetUserFromToken(c); claims != nil {
		return claims.Email
	}
	return ""
}
