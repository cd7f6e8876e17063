package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/services"
)

func login(t *testing.T, s *testServer) string {
	t.Helper()
	rec, env := s.json(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out controllers.LoginResponse
	decode(t, env.Data, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.json(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    testAdminEmail,
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, s)
	assert.NotEmpty(t, token)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.json(t, http.MethodGet, "/api/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.json(t, http.MethodGet, "/api/admin/orders", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrdersMergesOrdersAndTransactions(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	createOrder(t, s)
	time.Sleep(2 * time.Millisecond)
	rec, _ := s.json(t, http.MethodPost, "/api/transactions", cartBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	time.Sleep(2 * time.Millisecond)
	createOrder(t, s)

	rec, env := s.json(t, http.MethodGet, "/api/admin/orders?limit=10", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page services.OrderPage
	decode(t, env.Data, &page)

	require.Len(t, page.Items, 3)
	assert.Equal(t, services.ViewAll, page.View)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt), "items must be newest first")
	}
	assert.Equal(t, models.KindTransaction, page.Items[1].Kind)
	assert.Equal(t, "card", page.Items[1].PaymentMethod)
	require.NotNil(t, page.Items[0].Payment)
	assert.True(t, page.Items[0].Payment.Placeholder)

	rec, _ = s.json(t, http.MethodGet, "/api/admin/orders?view=nope", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateOrderThroughVariant(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	rec, env := s.json(t, http.MethodPost, "/api/transactions", cartBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created controllers.CreateTransactionResponse
	decode(t, env.Data, &created)

	target := "/api/admin/orders/transaction/" + created.Transaction.ID.Hex()
	rec, _ = s.json(t, http.MethodPut, target, map[string]string{"status": "Lost"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.json(t, http.MethodPut, target, map[string]string{
		"status":        "Shipped",
		"paymentStatus": "succeeded",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.UnifiedOrder
	decode(t, env.Data, &updated)
	assert.Equal(t, "Shipped", updated.Status)
	assert.Equal(t, "succeeded", updated.PaymentStatus)

	stored, err := s.store.Transactions.FindByID(t.Context(), created.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", stored.PaymentDetails.Status)

	rec, _ = s.json(t, http.MethodPut, "/api/admin/orders/refund/"+created.Transaction.ID.Hex(), map[string]string{"status": "Shipped"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminPreferences(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	rec, env := s.json(t, http.MethodGet, "/api/admin/preferences", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs models.AdminPreferences
	decode(t, env.Data, &prefs)
	assert.Equal(t, models.DefaultPreferences(testAdminEmail).PageSize, prefs.PageSize)
	assert.True(t, prefs.SidebarOpen)

	rec, _ = s.json(t, http.MethodPut, "/api/admin/preferences", map[string]interface{}{
		"sidebarOpen": false,
		"openMenus":   []string{"orders"},
		"ordersView":  "transactions",
		"pageSize":    25,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.json(t, http.MethodGet, "/api/admin/preferences", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &prefs)
	assert.False(t, prefs.SidebarOpen)
	assert.Equal(t, []string{"orders"}, prefs.OpenMenus)
	assert.Equal(t, "transactions", prefs.OrdersView)
	assert.EqualValues(t, 25, prefs.PageSize)
	assert.Equal(t, testAdminEmail, prefs.Owner)
}

func TestCryptoPaymentEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.json(t, http.MethodPost, "/api/crypto/payments", map[string]interface{}{
		"amount":         100,
		"currency":       "USD",
		"cryptoCurrency": "DOGE",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.json(t, http.MethodPost, "/api/crypto/payments", map[string]interface{}{
		"amount":         130,
		"currency":       "usd",
		"cryptoCurrency": "btc",
		"customer":       map[string]string{"name": "Satoshi", "email": "not-an-email"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "email")

	rec, env = s.json(t, http.MethodPost, "/api/crypto/payments", map[string]interface{}{
		"amount":         130,
		"currency":       "usd",
		"cryptoCurrency": "btc",
		"customer":       map[string]string{"name": "Satoshi", "email": "s@example.com"},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var payment models.CryptoPayment
	decode(t, env.Data, &payment)
	assert.Equal(t, services.MockBTCAddress, payment.WalletAddress)
	assert.InDelta(t, 0.002, payment.CryptoAmount, 1e-9)

	rec, env = s.json(t, http.MethodGet, "/api/crypto/payments/"+payment.TransactionID+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &payment)
	assert.Equal(t, models.CryptoStatusPending, payment.Status)

	rec, _ = s.do(t, httptestGet("/api/crypto/payments/"+payment.TransactionID+"/qr"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])

	rec, _ = s.json(t, http.MethodGet, "/api/crypto/payments/CPUNKNOWN/status", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.json(t, http.MethodGet, "/api/crypto/payments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.CryptoPayment
	decode(t, env.Data, &all)
	assert.Len(t, all, 1)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, httptestGet("/health"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, "healthy", body.Message)
	assert.Contains(t, string(body.Data), "time")
}
