package routes

import (
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/labstack/echo/v4"
)

// RegisterFileRoutes serves uploads from the configured disk
func RegisterFileRoutes(e *echo.Echo, disk storage.Disk) {
	e.GET("/uploads/*", ServeFile(disk))
}

// ServeFile handles serving uploaded files with proper security checks
func ServeFile(disk storage.Disk) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("*")
		if name == "" {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found - no path provided",
			})
		}

		// Clean the path to prevent directory traversal
		cleanPath := path.Clean("/" + name)
		if strings.Contains(name, "..") || cleanPath == "/" {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied - invalid path",
			})
		}
		key := strings.TrimPrefix(cleanPath, "/")

		ctx := c.Request().Context()
		if !disk.Exists(ctx, key) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found",
			})
		}
		content, err := disk.Get(ctx, key)
		if err != nil {
			c.Logger().Errorf("Error reading file %s: %v", key, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Error accessing file",
			})
		}

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = http.DetectContentType(content)
		}
		c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
		c.Response().Header().Set("Expires", time.Now().AddDate(1, 0, 0).Format(time.RFC1123))
		return c.Blob(http.StatusOK, contentType, content)
	}
}
