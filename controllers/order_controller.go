package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/HSouheill/shop_backoffice/websocket"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	mailTimeout     = 30 * time.Second
)

type OrderController struct {
	Orders    repositories.OrderRepository
	Mailer    services.Mailer
	Publisher EventPublisher
}

func NewOrderController(orders repositories.OrderRepository, mailer services.Mailer, publisher EventPublisher) *OrderController {
	if mailer == nil {
		mailer = services.NewMailer(services.SMTPConfig{})
	}
	return &OrderController{Orders: orders, Mailer: mailer, Publisher: publisherOrNoop(publisher)}
}

type CreateOrderRequest struct {
	Customer       models.Customer       `json:"customer" validate:"required"`
	Products       []models.OrderProduct `json:"products" validate:"required,min=1,dive"`
	ShippingMethod string                `json:"shippingMethod"`
	PaymentMethod  string                `json:"paymentMethod" validate:"required"`
	PaymentStatus  string                `json:"paymentStatus"`
	Status         string                `json:"status"`
}

type UpdateOrderRequest struct {
	Customer       *models.Customer      `json:"customer" validate:"omitempty"`
	Products       []models.OrderProduct `json:"products" validate:"omitempty,min=1,dive"`
	ShippingMethod *string               `json:"shippingMethod"`
	PaymentMethod  *string               `json:"paymentMethod"`
	PaymentStatus  *string               `json:"paymentStatus"`
	Status         *string               `json:"status"`
}

// pagination reads page and limit query parameters with sane bounds.
func pagination(c echo.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// CreateOrder stores a manually placed order with server-computed totals
func (oc *OrderController) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, utils.ValidationMessage(err))
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.OrderStatusPending
	}
	if !models.IsValidOrderStatus(status) {
		return jsonError(c, http.StatusBadRequest, "Invalid order status")
	}

	order := models.Order{
		Customer:       req.Customer,
		Products:       req.Products,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		Status:         status,
	}
	order.ComputeTotals()

	if err := oc.Orders.Create(c.Request().Context(), &order); err != nil {
		return storeError(c, err, "Order not found", "Failed to create order")
	}

	go func(order models.Order) {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := oc.Mailer.SendOrderConfirmation(ctx, order); err != nil {
			log.Printf("Failed to send confirmation for order %s: %v", order.ID.Hex(), err)
		}
	}(order)
	oc.Publisher.Publish(websocket.EventOrderCreated, order)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order created successfully",
		Data:    order,
	})
}

// GetAllOrders lists orders newest first
func (oc *OrderController) GetAllOrders(c echo.Context) error {
	page, limit := pagination(c)
	opts := repositories.ListOptions{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		PaymentMethod: c.QueryParam("paymentMethod"),
		Search:        strings.TrimSpace(c.QueryParam("search")),
	}

	orders, total, err := oc.Orders.List(c.Request().Context(), opts)
	if err != nil {
		return storeError(c, err, "Orders not found", "Failed to fetch orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data: models.Page{
			Items:      orders,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: models.TotalPages(total, limit),
		},
	})
}

func (oc *OrderController) GetOrder(c echo.Context) error {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return nil
	}
	order, err := oc.Orders.FindByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "Order not found", "Failed to fetch order")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order retrieved successfully",
		Data:    order,
	})
}

// UpdateOrder applies a partial update. Replacing products recomputes totals.
func (oc *OrderController) UpdateOrder(c echo.Context) error {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return nil
	}

	var req UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, utils.ValidationMessage(err))
	}
	if req.Status != nil && !models.IsValidOrderStatus(*req.Status) {
		return jsonError(c, http.StatusBadRequest, "Invalid order status")
	}

	patch := models.OrderPatch{
		Customer:       req.Customer,
		Products:       req.Products,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		Status:         req.Status,
	}
	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	order, err := oc.Orders.Update(c.Request().Context(), id, patch)
	if err != nil {
		return storeError(c, err, "Order not found", "Failed to update order")
	}
	oc.Publisher.Publish(websocket.EventOrderUpdated, order)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order updated successfully",
		Data:    order,
	})
}

func (oc *OrderController) DeleteOrder(c echo.Context) error {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return nil
	}
	if err := oc.Orders.Delete(c.Request().Context(), id); err != nil {
		return storeError(c, err, "Order not found", "Failed to delete order")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order deleted successfully",
	})
}
