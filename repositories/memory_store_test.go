package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestListOptionsSkip(t *testing.T) {
	assert.Equal(t, int64(0), ListOptions{Page: 0, Limit: 10}.Skip())
	assert.Equal(t, int64(0), ListOptions{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(20), ListOptions{Page: 3, Limit: 10}.Skip())
	assert.Equal(t, int64(0), ListOptions{Page: 3}.Skip())
}

func TestMemoryCategorySubcategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Categories

	cat := &models.Category{Name: "Shoes"}
	require.NoError(t, repo.Create(ctx, cat))
	assert.False(t, cat.ID.IsZero())
	assert.NotNil(t, cat.Subcategories)

	exists, err := repo.ExistsByName(ctx, "Shoes", primitive.NilObjectID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByName(ctx, "Shoes", cat.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	sub := &models.Subcategory{Name: "Sneakers"}
	require.NoError(t, repo.AddSubcategory(ctx, cat.ID, sub))
	require.False(t, sub.ID.IsZero())

	updated, err := repo.UpdateSubcategory(ctx, cat.ID, sub.ID, models.SubcategoryPatch{Name: strPtr("Trainers")})
	require.NoError(t, err)
	assert.Equal(t, "Trainers", updated.Name)

	got, err := repo.FindByID(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, got.Subcategories, 1)
	assert.Equal(t, "Trainers", got.Subcategories[0].Name)

	// Mutating a returned copy must not leak into the store.
	got.Subcategories[0].Name = "changed"
	again, _ := repo.FindByID(ctx, cat.ID)
	assert.Equal(t, "Trainers", again.Subcategories[0].Name)

	require.NoError(t, repo.RemoveSubcategory(ctx, cat.ID, sub.ID))
	assert.ErrorIs(t, repo.RemoveSubcategory(ctx, cat.ID, sub.ID), ErrNotFound)

	_, err = repo.UpdateSubcategory(ctx, primitive.NewObjectID(), sub.ID, models.SubcategoryPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, cat.ID))
	_, err = repo.FindByID(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrderListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Orders
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, method := range []string{"Cash", "bank", "Cash", "JazzCash", "cash"} {
		o := &models.Order{
			Customer:      models.Customer{Name: "Customer", Email: "c@example.com", Phone: "0300"},
			PaymentMethod: method,
			Status:        models.OrderStatusPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	all, total, err := repo.List(ctx, ListOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, all, 2)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.Equal(t, base.Add(4*time.Hour), all[0].CreatedAt)

	cash, total, err := repo.List(ctx, ListOptions{PaymentMethod: "CASH"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, cash, 3)

	empty, total, err := repo.List(ctx, ListOptions{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, empty)

	none, _, err := repo.List(ctx, ListOptions{Search: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryOrderUpdateRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Orders
	o := &models.Order{Status: models.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, o))

	updated, err := repo.Update(ctx, o.ID, models.OrderPatch{
		Products: []models.OrderProduct{{Name: "A", Price: 2.5, Quantity: 2}, {Name: "B", Price: 1, Quantity: 3}},
		Status:   strPtr(models.OrderStatusShipped),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalQuantity)
	assert.InDelta(t, 8.0, updated.GrandTotal, 1e-9)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = repo.Update(ctx, primitive.NewObjectID(), models.OrderPatch{Status: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPaymentsByOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Payments
	base := time.Now()
	require.NoError(t, repo.Create(ctx, &models.Payment{OrderID: "a", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.Payment{OrderID: "a", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.Payment{OrderID: "b", CreatedAt: base}))

	forA, err := repo.FindAll(ctx, "a")
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.True(t, forA[0].CreatedAt.After(forA[1].CreatedAt))

	all, err := repo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := repo.FindByOrderIDs(ctx, []string{"b", "missing"})
	require.NoError(t, err)
	assert.Len(t, some, 1)

	updated, err := repo.Update(ctx, forA[0].ID, models.PaymentPatch{Extra: map[string]string{"note": "ok"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", updated.Extra["note"])
}

func TestMemoryCryptoTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().CryptoPayments
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.CryptoPayment{
		TransactionID: "CP1", Status: models.CryptoStatusPending, ExpiresAt: now.Add(10 * time.Minute),
	}))

	ok, err := repo.Transition(ctx, "CP1", models.CryptoStatusPending, models.CryptoStatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, "CP1", models.CryptoStatusPending, models.CryptoStatusExpired, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByTransactionID(ctx, "CP1")
	require.NoError(t, err)
	assert.Equal(t, models.CryptoStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestMemoryCryptoCreateRejectsDuplicateTransactionID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().CryptoPayments
	items := []models.CryptoItem{{Name: "Sneaker", Price: 10, Quantity: 1}}
	require.NoError(t, repo.Create(ctx, &models.CryptoPayment{TransactionID: "CP1", Items: items}))

	err := repo.Create(ctx, &models.CryptoPayment{TransactionID: "CP1"})
	assert.ErrorIs(t, err, ErrDuplicate)

	items[0].Name = "changed by caller"
	got, err := repo.FindByTransactionID(ctx, "CP1")
	require.NoError(t, err)
	assert.Equal(t, "Sneaker", got.Items[0].Name)

	got.Items[0].Quantity = 99
	again, err := repo.FindByTransactionID(ctx, "CP1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	all[0].Items[0].Price = 0
	again, _ = repo.FindByTransactionID(ctx, "CP1")
	assert.Equal(t, 10.0, again.Items[0].Price)
}

func TestMemoryCryptoExpireStale(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().CryptoPayments
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.CryptoPayment{TransactionID: "old", Status: models.CryptoStatusPending, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.CryptoPayment{TransactionID: "fresh", Status: models.CryptoStatusPending, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.CryptoPayment{TransactionID: "done", Status: models.CryptoStatusCompleted, ExpiresAt: now.Add(-time.Minute)}))

	changed, err := repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	old, _ := repo.FindByTransactionID(ctx, "old")
	assert.Equal(t, models.CryptoStatusExpired, old.Status)
	done, _ := repo.FindByTransactionID(ctx, "done")
	assert.Equal(t, models.CryptoStatusCompleted, done.Status)
}

func TestMemoryPreferences(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Preferences

	_, err := repo.Get(ctx, "admin@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	prefs := models.DefaultPreferences("admin@example.com")
	prefs.OrdersView = "orders"
	require.NoError(t, repo.Save(ctx, &prefs))

	got, err := repo.Get(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "orders", got.OrdersView)
}
