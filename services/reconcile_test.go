package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, store *repositories.Store, offset time.Duration, method string) models.Order {
	t.Helper()
	o := models.Order{
		Customer:      models.Customer{Name: "Ayesha", Email: "ayesha@example.com", Phone: "0300"},
		Products:      []models.OrderProduct{{Name: "Mug", Price: 5, Quantity: 2}},
		PaymentMethod: method,
		Status:        models.OrderStatusPending,
		CreatedAt:     baseTime.Add(offset),
	}
	o.ComputeTotals()
	require.NoError(t, store.Orders.Create(context.Background(), &o))
	return o
}

func seedTransaction(t *testing.T, store *repositories.Store, offset time.Duration) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		User: models.TransactionUser{Name: "Bilal", Email: "bilal@example.com"},
		CartItems: []models.CartItem{
			{Product: models.CartProduct{Name: "Lamp", Price: 12.5}, Quantity: 2},
		},
		PaymentDetails: models.PaymentDetails{Amount: 2500, Currency: "usd"},
		CreatedAt:      baseTime.Add(offset),
	}
	require.NoError(t, store.Transactions.Create(context.Background(), &tx))
	return tx
}

func TestListMergesAndSortsNewestFirst(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedOrder(t, store, 1*time.Hour, "Cash")
	seedOrder(t, store, 3*time.Hour, "Cash")
	seedTransaction(t, store, 2*time.Hour)
	seedTransaction(t, store, 4*time.Hour)
	seedTransaction(t, store, 0)

	page, err := NewOrderReconciler(store).List(context.Background(), ListQuery{View: ViewAll, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Equal(t, int64(5), page.Total)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt))
	}
	assert.Equal(t, models.KindTransaction, page.Items[0].Kind)
	assert.Equal(t, models.KindOrder, page.Items[1].Kind)
	assert.Equal(t, ViewAll, page.View)
	assert.False(t, page.ServerTime.IsZero())
}

func TestListKeepsOrdersFirstOnEqualTimestamps(t *testing.T) {
	store := repositories.NewMemoryStore()
	tx := seedTransaction(t, store, 0)
	o := seedOrder(t, store, 0, "Cash")

	page, err := NewOrderReconciler(store).List(context.Background(), ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, o.ID.Hex(), page.Items[0].ID)
	assert.Equal(t, tx.ID.Hex(), page.Items[1].ID)
}

func TestNormalizeTransactionDefaults(t *testing.T) {
	tx := models.Transaction{
		ID:        primitive.NewObjectID(),
		User:      models.TransactionUser{Name: "Bilal"},
		CartItems: []models.CartItem{{Product: models.CartProduct{Name: "Lamp", Price: 12.5}, Quantity: 2}},
	}
	u := transactionSource{tx: tx}.Normalize(nil)

	assert.Equal(t, "Bilal", u.Customer.Name)
	assert.Equal(t, DefaultEmail, u.Customer.Email)
	assert.Equal(t, DefaultAddress, u.Customer.Address)
	assert.Equal(t, DefaultCity, u.Customer.City)
	assert.Equal(t, DefaultZip, u.Customer.Zip)
	assert.Equal(t, DefaultPhone, u.Customer.Phone)
	assert.Equal(t, DefaultCountry, u.Customer.Country)
	assert.Equal(t, models.PaymentStatusRequiresPaymentMethod, u.PaymentStatus)
	assert.Equal(t, DefaultPaymentMethod, u.PaymentMethod)
	assert.Equal(t, DefaultShippingMethod, u.ShippingMethod)
	assert.Equal(t, models.OrderStatusPending, u.Status)
	require.Len(t, u.Products, 1)
	assert.InDelta(t, 25.0, u.Products[0].TotalPrice, 1e-9)
	assert.Equal(t, 2, u.TotalQuantity)
	assert.InDelta(t, 25.0, u.GrandTotal, 1e-9)
	assert.Nil(t, u.Payment)
}

func TestNormalizeOrderAttachesAllPayments(t *testing.T) {
	o := models.Order{ID: primitive.NewObjectID(), PaymentMethod: "Bank"}
	id := o.ID.Hex()
	payments := []models.Payment{
		{OrderID: id, Status: "submitted", CreatedAt: baseTime},
		{OrderID: "other", Status: "verified", CreatedAt: baseTime.Add(time.Hour)},
		{OrderID: id, Status: "verified", CreatedAt: baseTime.Add(2 * time.Hour)},
	}
	u := orderSource{order: o}.Normalize(payments)

	require.Len(t, u.Payments, 2)
	require.NotNil(t, u.Payment)
	assert.Equal(t, "verified", u.Payment.Status)
	assert.False(t, u.Payment.Placeholder)
	assert.Equal(t, "verified", u.PaymentStatus)
}

func TestNormalizeOrderSynthesisesPlaceholderPayment(t *testing.T) {
	o := models.Order{ID: primitive.NewObjectID(), PaymentMethod: "JazzCash"}
	u := orderSource{order: o}.Normalize(nil)

	require.NotNil(t, u.Payment)
	assert.True(t, u.Payment.Placeholder)
	assert.Equal(t, "JazzCash", u.Payment.PaymentMethod)
	assert.Equal(t, "pending", u.Payment.Status)
	assert.Empty(t, u.Payments)
	assert.NotNil(t, u.Products)
}

func TestListTotalPagesUsesLargerSource(t *testing.T) {
	store := repositories.NewMemoryStore()
	for i := 0; i < 5; i++ {
		seedOrder(t, store, time.Duration(i)*time.Minute, "Cash")
	}
	for i := 0; i < 2; i++ {
		seedTransaction(t, store, time.Duration(i)*time.Minute)
	}
	r := NewOrderReconciler(store)

	page, err := r.List(context.Background(), ListQuery{View: ViewAll, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Len(t, page.Items, 4)

	page, err = r.List(context.Background(), ListQuery{View: ViewTransactions, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalPages)
	assert.Equal(t, int64(2), page.Total)
	for _, item := range page.Items {
		assert.Equal(t, models.KindTransaction, item.Kind)
	}
}

func TestListAppliesPaymentMethodFilter(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedOrder(t, store, 0, "Cash")
	seedOrder(t, store, time.Minute, "Bank")

	page, err := NewOrderReconciler(store).List(context.Background(), ListQuery{View: ViewOrders, PaymentMethod: "cash"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cash", page.Items[0].PaymentMethod)
}

type failingTransactions struct {
	repositories.TransactionRepository
}

func (failingTransactions) List(context.Context, repositories.ListOptions) ([]models.Transaction, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestListFailsWhenAnySourceFails(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedOrder(t, store, 0, "Cash")
	store.Transactions = failingTransactions{store.Transactions}

	page, err := NewOrderReconciler(store).List(context.Background(), ListQuery{View: ViewAll})
	require.Error(t, err)
	assert.Nil(t, page)
	assert.Contains(t, err.Error(), "connection reset")

	// Orders alone still work.
	page, err = NewOrderReconciler(store).List(context.Background(), ListQuery{View: ViewOrders})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestUpdateGoesThroughVariant(t *testing.T) {
	store := repositories.NewMemoryStore()
	o := seedOrder(t, store, 0, "Cash")
	tx := seedTransaction(t, store, 0)
	r := NewOrderReconciler(store)
	ctx := context.Background()

	u, err := r.Update(ctx, models.KindOrder, o.ID, OrderEdit{Status: strPtr(models.OrderStatusShipped), PaymentStatus: strPtr("paid")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, u.Status)
	assert.Equal(t, "paid", u.PaymentStatus)

	u, err = r.Update(ctx, models.KindTransaction, tx.ID, OrderEdit{PaymentStatus: strPtr("succeeded"), ShippingMethod: strPtr("Express")})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", u.PaymentStatus)
	assert.Equal(t, "Express", u.ShippingMethod)

	stored, err := store.Transactions.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", stored.PaymentDetails.Status)

	_, err = r.Update(ctx, models.KindOrder, o.ID, OrderEdit{Status: strPtr("Lost")})
	assert.ErrorIs(t, err, ErrInvalidEdit)
	_, err = r.Update(ctx, models.KindOrder, o.ID, OrderEdit{})
	assert.ErrorIs(t, err, ErrInvalidEdit)
	_, err = r.Update(ctx, models.OrderKind("refund"), o.ID, OrderEdit{Status: strPtr(models.OrderStatusShipped)})
	assert.ErrorIs(t, err, ErrInvalidEdit)
	_, err = r.Update(ctx, models.KindOrder, primitive.NewObjectID(), OrderEdit{Status: strPtr(models.OrderStatusShipped)})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestParseOrderView(t *testing.T) {
	v, err := ParseOrderView("")
	require.NoError(t, err)
	assert.Equal(t, ViewAll, v)
	v, err = ParseOrderView("Orders")
	require.NoError(t, err)
	assert.Equal(t, ViewOrders, v)
	_, err = ParseOrderView("refunds")
	assert.Error(t, err)
}
