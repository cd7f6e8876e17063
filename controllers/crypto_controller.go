package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/labstack/echo/v4"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type CryptoController struct {
	Provider services.PaymentConfirmationProvider
	Payments repositories.CryptoPaymentRepository
}

func NewCryptoController(provider services.PaymentConfirmationProvider, payments repositories.CryptoPaymentRepository) *CryptoController {
	return &CryptoController{Provider: provider, Payments: payments}
}

// CreatePayment opens a crypto payment request
func (cc *CryptoController) CreatePayment(c echo.Context) error {
	var req services.CreateCryptoPaymentInput
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, utils.ValidationMessage(err))
	}

	payment, err := cc.Provider.CreatePayment(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCryptoPayment) {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		c.Logger().Errorf("Failed to create crypto payment: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to create crypto payment: "+err.Error())
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Crypto payment created successfully",
		Data:    payment,
	})
}

func (cc *CryptoController) GetAllPayments(c echo.Context) error {
	payments, err := cc.Payments.FindAll(c.Request().Context())
	if err != nil {
		return storeError(c, err, "Crypto payments not found", "Failed to fetch crypto payments")
	}
	if payments == nil {
		payments = []models.CryptoPayment{}
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Crypto payments retrieved successfully",
		Data:    payments,
	})
}

// CheckStatus advances the payment's status when due and returns it
func (cc *CryptoController) CheckStatus(c echo.Context) error {
	payment, err := cc.Provider.CheckPaymentStatus(c.Request().Context(), c.Param("transactionId"))
	if err != nil {
		return storeError(c, err, "Crypto payment not found", "Failed to check crypto payment")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment status: " + payment.Status,
		Data:    payment,
	})
}

// QRCode renders the payment's wallet address as a PNG
func (cc *CryptoController) QRCode(c echo.Context) error {
	payment, err := cc.Payments.FindByTransactionID(c.Request().Context(), c.Param("transactionId"))
	if err != nil {
		return storeError(c, err, "Crypto payment not found", "Failed to fetch crypto payment")
	}

	size := defaultQRSize
	if raw := c.QueryParam("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			return jsonError(c, http.StatusBadRequest, "Invalid QR code size")
		}
		size = n
	}

	png, err := services.QRCodePNG(payment.WalletAddress, size)
	if err != nil {
		c.Logger().Errorf("Failed to render QR code: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to render QR code")
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}
