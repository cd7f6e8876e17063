package controllers

import (
	"net/http"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/HSouheill/shop_backoffice/websocket"
	"github.com/labstack/echo/v4"
)

// TransactionController handles Stripe-backed checkouts
type TransactionController struct {
	Transactions repositories.TransactionRepository
	Gateway      services.PaymentGateway
	Currency     string
	Publisher    EventPublisher
}

func NewTransactionController(transactions repositories.TransactionRepository, gateway services.PaymentGateway, currency string, publisher EventPublisher) *TransactionController {
	if currency == "" {
		currency = "usd"
	}
	return &TransactionController{
		Transactions: transactions,
		Gateway:      gateway,
		Currency:     strings.ToLower(currency),
		Publisher:    publisherOrNoop(publisher),
	}
}

type CreateTransactionRequest struct {
	User           models.TransactionUser `json:"user"`
	CartItems      []models.CartItem      `json:"cartItems" validate:"required,min=1,dive"`
	Images         []string               `json:"images"`
	ShippingMethod string                 `json:"shippingMethod"`
}

type CreateTransactionResponse struct {
	Transaction  models.Transaction `json:"transaction"`
	ClientSecret string             `json:"clientSecret"`
}

type UpdateTransactionRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"paymentStatus"`
	ShippingMethod *string `json:"shippingMethod"`
}

type CheckoutSessionRequest struct {
	CartItems []models.CartItem `json:"cartItems" validate:"required,min=1,dive"`
}

// CreateTransaction opens a payment intent for the cart total and stores the
// pending transaction
func (tc *TransactionController) CreateTransaction(c echo.Context) error {
	ctx := c.Request().Context()
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, utils.ValidationMessage(err))
	}

	amount := utils.ToMinorUnits(models.CartTotal(req.CartItems))
	if amount <= 0 {
		return jsonError(c, http.StatusBadRequest, "Cart total must be greater than zero")
	}

	metadata := map[string]string{}
	if req.User.Email != "" {
		metadata["email"] = req.User.Email
	}
	intent, err := tc.Gateway.CreatePaymentIntent(ctx, amount, tc.Currency, metadata)
	if err != nil {
		c.Logger().Errorf("Failed to create payment intent: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to create payment intent: "+err.Error())
	}

	tx := models.Transaction{
		User:      req.User,
		CartItems: req.CartItems,
		PaymentDetails: models.PaymentDetails{
			PaymentIntentID: intent.ID,
			Amount:          amount,
			Currency:        tc.Currency,
			Status:          models.PaymentStatusRequiresPaymentMethod,
			Method:          "card",
		},
		Images:         req.Images,
		ShippingMethod: req.ShippingMethod,
		Status:         models.OrderStatusPending,
	}
	if err := tc.Transactions.Create(ctx, &tx); err != nil {
		return storeError(c, err, "Transaction not found", "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Transaction created successfully",
		Data:    CreateTransactionResponse{Transaction: tx, ClientSecret: intent.ClientSecret},
	})
}

// GetAllTransactions lists transactions newest first
func (tc *TransactionController) GetAllTransactions(c echo.Context) error {
	page, limit := pagination(c)
	opts := repositories.ListOptions{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
	txs, total, err := tc.Transactions.List(c.Request().Context(), opts)
	if err != nil {
		return storeError(c, err, "Transactions not found", "Failed to fetch transactions")
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data: models.Page{
			Items:      txs,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: models.TotalPages(total, limit),
		},
	})
}

// GetTransactionById returns a transaction, backfilling card details from
// the gateway the first time they are available
func (tc *TransactionController) GetTransactionById(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return nil
	}
	tx, err := tc.Transactions.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Transaction not found", "Failed to fetch transaction")
	}

	if tx.PaymentDetails.PaymentIntentID != "" && tx.PaymentDetails.CardDetails == nil {
		if updated := tc.backfillCard(c, tx); updated != nil {
			tx = updated
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction retrieved successfully",
		Data:    tx,
	})
}

// backfillCard returns the updated transaction, or nil when nothing changed
// or the gateway could not be reached.
func (tc *TransactionController) backfillCard(c echo.Context, tx *models.Transaction) *models.Transaction {
	ctx := c.Request().Context()
	intent, err := tc.Gateway.GetPaymentIntent(ctx, tx.PaymentDetails.PaymentIntentID)
	if err != nil {
		c.Logger().Warnf("Failed to fetch payment intent %s: %v", tx.PaymentDetails.PaymentIntentID, err)
		return nil
	}
	if intent.Card == nil {
		return nil
	}

	patch := models.TransactionPatch{CardDetails: intent.Card}
	if intent.ReceiptURL != "" {
		patch.ReceiptURL = stringPtr(intent.ReceiptURL)
	}
	if intent.Status != "" {
		patch.PaymentStatus = stringPtr(intent.Status)
	}
	updated, err := tc.Transactions.Update(ctx, tx.ID, patch)
	if err != nil {
		c.Logger().Warnf("Failed to store card details for transaction %s: %v", tx.ID.Hex(), err)
		return nil
	}
	return updated
}

// UpdateTransaction edits status, payment status and shipping method
func (tc *TransactionController) UpdateTransaction(c echo.Context) error {
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return nil
	}
	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Status != nil && !models.IsValidOrderStatus(*req.Status) {
		return jsonError(c, http.StatusBadRequest, "Invalid transaction status")
	}

	patch := models.TransactionPatch{
		Status:         req.Status,
		PaymentStatus:  req.PaymentStatus,
		ShippingMethod: req.ShippingMethod,
	}
	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	tx, err := tc.Transactions.Update(c.Request().Context(), id, patch)
	if err != nil {
		return storeError(c, err, "Transaction not found", "Failed to update transaction")
	}
	tc.Publisher.Publish(websocket.EventTransactionUpdated, tx)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction updated successfully",
		Data:    tx,
	})
}

func (tc *TransactionController) DeleteTransaction(c echo.Context) error {
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return nil
	}
	if err := tc.Transactions.Delete(c.Request().Context(), id); err != nil {
		return storeError(c, err, "Transaction not found", "Failed to delete transaction")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction deleted successfully",
	})
}

// CreateCheckoutSession starts a hosted checkout for the cart and returns its id
func (tc *TransactionController) CreateCheckoutSession(c echo.Context) error {
	var req CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, utils.ValidationMessage(err))
	}

	session, err := tc.Gateway.CreateCheckoutSession(c.Request().Context(), req.CartItems)
	if err != nil {
		c.Logger().Errorf("Failed to create checkout session: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to create checkout session: "+err.Error())
	}
	return c.JSON(http.StatusOK, session)
}
