package controllers

import (
	"errors"
	"net/http"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher pushes change notifications to connected dashboards.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.Response{Status: status, Message: message})
}

// parseID reads an ObjectID path parameter, writing a 400 when it is invalid.
func parseID(c echo.Context, param, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// storeError maps a repository error to 404 or 500.
func storeError(c echo.Context, err error, notFound, failed string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, notFound)
	}
	c.Logger().Errorf("%s: %v", failed, err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: failed + ": " + err.Error(),
	})
}

// imageURL rewrites a stored file key to an absolute URL for this request.
func imageURL(c echo.Context, disk storage.Disk, key string) string {
	return utils.AbsoluteURL(disk, c.Scheme(), c.Request().Host, key)
}

// removeFile deletes an upload, logging instead of failing the request.
func removeFile(c echo.Context, disk storage.Disk, key string) {
	if err := utils.RemoveFile(c.Request().Context(), disk, key); err != nil {
		c.Logger().Warnf("Failed to delete file %s: %v", key, err)
	}
}

// formValue returns the form field and whether it was sent at all.
func formValue(c echo.Context, name string) (string, bool) {
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		if values, ok := form.Value[name]; ok && len(values) > 0 {
			return values[0], true
		}
	}
	if err := c.Request().ParseForm(); err == nil {
		if values, ok := c.Request().Form[name]; ok && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

func stringPtr(s string) *string { return &s }
