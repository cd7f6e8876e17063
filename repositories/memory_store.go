package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore returns a Store kept entirely in process memory. It backs
// DB_DRIVER=memory for local runs and the handler tests.
func NewMemoryStore() *Store {
	return &Store{
		Categories:     &MemoryCategoryRepository{},
		Products:       &MemoryProductRepository{},
		Orders:         &MemoryOrderRepository{},
		Transactions:   &MemoryTransactionRepository{},
		Payments:       &MemoryPaymentRepository{},
		CryptoPayments: &MemoryCryptoPaymentRepository{},
		Preferences:    &MemoryPreferencesRepository{prefs: map[string]models.AdminPreferences{}},
	}
}

func stamp(id *primitive.ObjectID, createdAt, updatedAt *time.Time) {
	now := time.Now()
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// page sorts newest first (stable) and cuts out the requested page.
func page[T any](items []T, createdAt func(T) time.Time, opts ListOptions) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
	if opts.Limit <= 0 {
		return items
	}
	start := opts.Skip()
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + opts.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ── Categories ────────────────────────────────────────────────────────────────

type MemoryCategoryRepository struct {
	mu    sync.RWMutex
	items []models.Category
}

func cloneCategory(c models.Category) models.Category {
	c.Subcategories = append([]models.Subcategory{}, c.Subcategories...)
	return c
}

func (r *MemoryCategoryRepository) indexOf(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryCategoryRepository) Create(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if category.Subcategories == nil {
		category.Subcategories = []models.Subcategory{}
	}
	r.items = append(r.items, cloneCategory(*category))
	return nil
}

func (r *MemoryCategoryRepository) FindAll(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, cloneCategory(c))
	}
	return page(out, func(c models.Category) time.Time { return c.CreatedAt }, ListOptions{}), nil
}

func (r *MemoryCategoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := cloneCategory(r.items[i])
	return &c, nil
}

func (r *MemoryCategoryRepository) ExistsByName(_ context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.Name == name && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryCategoryRepository) Update(_ context.Context, id primitive.ObjectID, patch models.CategoryPatch) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := &r.items[i]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
	c.UpdatedAt = time.Now()
	out := cloneCategory(*c)
	return &out, nil
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *MemoryCategoryRepository) AddSubcategory(_ context.Context, categoryID primitive.ObjectID, sub *models.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrNotFound
	}
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	r.items[i].Subcategories = append(r.items[i].Subcategories, *sub)
	r.items[i].UpdatedAt = time.Now()
	return nil
}

func (r *MemoryCategoryRepository) UpdateSubcategory(_ context.Context, categoryID, subID primitive.ObjectID, patch models.SubcategoryPatch) (*models.Subcategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(categoryID)
	if i < 0 {
		return nil, ErrNotFound
	}
	sub := r.items[i].FindSubcategory(subID)
	if sub == nil {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		sub.Name = *patch.Name
	}
	if patch.Description != nil {
		sub.Description = *patch.Description
	}
	if patch.Image != nil {
		sub.Image = *patch.Image
	}
	r.items[i].UpdatedAt = time.Now()
	out := *sub
	return &out, nil
}

func (r *MemoryCategoryRepository) RemoveSubcategory(_ context.Context, categoryID, subID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(categoryID)
	if i < 0 {
		return ErrNotFound
	}
	subs := r.items[i].Subcategories
	for j := range subs {
		if subs[j].ID == subID {
			r.items[i].Subcategories = append(subs[:j], subs[j+1:]...)
			r.items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

// ── Products ──────────────────────────────────────────────────────────────────

type MemoryProductRepository struct {
	mu    sync.RWMutex
	items []models.Product
}

func (r *MemoryProductRepository) indexOf(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	r.items = append(r.items, *product)
	return nil
}

func (r *MemoryProductRepository) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]models.Product{}, r.items...)
	return page(out, func(p models.Product) time.Time { return p.CreatedAt }, ListOptions{}), nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := r.items[i]
	return &p, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := &r.items[i]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	p.UpdatedAt = time.Now()
	out := *p
	return &out, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// Orders

type MemoryOrderRepository struct {
	mu    sync.RWMutex
	items []models.Order
}

func (r *MemoryOrderRepository) indexOf(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrder(o models.Order) models.Order {
	o.Products = append([]models.OrderProduct{}, o.Products...)
	return o
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	r.items = append(r.items, cloneOrder(*order))
	return nil
}

func (r *MemoryOrderRepository) List(_ context.Context, opts ListOptions) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []models.Order{}
	for _, o := range r.items {
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		if opts.PaymentMethod != "" && !strings.EqualFold(o.PaymentMethod, opts.PaymentMethod) {
			continue
		}
		if opts.Search != "" && !containsFold(o.Customer.Name, opts.Search) &&
			!containsFold(o.Customer.Email, opts.Search) && !containsFold(o.Customer.Phone, opts.Search) {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	total := int64(len(matched))
	return page(matched, func(o models.Order) time.Time { return o.CreatedAt }, opts), total, nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	o := cloneOrder(r.items[i])
	return &o, nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, id primitive.ObjectID, patch models.OrderPatch) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	o := &r.items[i]
	if patch.Customer != nil {
		o.Customer = *patch.Customer
	}
	if patch.Products != nil {
		o.Products = append([]models.OrderProduct{}, patch.Products...)
		o.ComputeTotals()
	}
	if patch.ShippingMethod != nil {
		o.ShippingMethod = *patch.ShippingMethod
	}
	if patch.PaymentMethod != nil {
		o.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	o.UpdatedAt = time.Now()
	out := cloneOrder(*o)
	return &out, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// Transactions

type MemoryTransactionRepository struct {
	mu    sync.RWMutex
	items []models.Transaction
}

func (r *MemoryTransactionRepository) indexOf(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.CartItems = append([]models.CartItem{}, t.CartItems...)
	t.Images = append([]string(nil), t.Images...)
	if t.PaymentDetails.CardDetails != nil {
		card := *t.PaymentDetails.CardDetails
		t.PaymentDetails.CardDetails = &card
	}
	return t
}

func (r *MemoryTransactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	r.items = append(r.items, cloneTransaction(*tx))
	return nil
}

func (r *MemoryTransactionRepository) List(_ context.Context, opts ListOptions) ([]models.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []models.Transaction{}
	for _, t := range r.items {
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.PaymentMethod != "" && !strings.EqualFold(t.PaymentDetails.Method, opts.PaymentMethod) {
			continue
		}
		if opts.Search != "" && !containsFold(t.User.Name, opts.Search) &&
			!containsFold(t.User.Email, opts.Search) && !containsFold(t.User.Phone, opts.Search) {
			continue
		}
		matched = append(matched, cloneTransaction(t))
	}
	total := int64(len(matched))
	return page(matched, func(t models.Transaction) time.Time { return t.CreatedAt }, opts), total, nil
}

func (r *MemoryTransactionRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	t := cloneTransaction(r.items[i])
	return &t, nil
}

func (r *MemoryTransactionRepository) Update(_ context.Context, id primitive.ObjectID, patch models.TransactionPatch) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	t := &r.items[i]
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		t.PaymentDetails.Status = *patch.PaymentStatus
	}
	if patch.ShippingMethod != nil {
		t.ShippingMethod = *patch.ShippingMethod
	}
	if patch.CardDetails != nil {
		card := *patch.CardDetails
		t.PaymentDetails.CardDetails = &card
	}
	if patch.ReceiptURL != nil {
		t.PaymentDetails.ReceiptURL = *patch.ReceiptURL
	}
	t.UpdatedAt = time.Now()
	out := cloneTransaction(*t)
	return &out, nil
}

func (r *MemoryTransactionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// Payments

type MemoryPaymentRepository struct {
	mu    sync.RWMutex
	items []models.Payment
}

func (r *MemoryPaymentRepository) indexOf(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePayment(p models.Payment) models.Payment {
	if p.Extra != nil {
		extra := make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}

func (r *MemoryPaymentRepository) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	r.items = append(r.items, clonePayment(*payment))
	return nil
}

func (r *MemoryPaymentRepository) filter(keep func(models.Payment) bool) []models.Payment {
	out := []models.Payment{}
	for _, p := range r.items {
		if keep(p) {
			out = append(out, clonePayment(p))
		}
	}
	return page(out, func(p models.Payment) time.Time { return p.CreatedAt }, ListOptions{})
}

func (r *MemoryPaymentRepository) FindAll(_ context.Context, orderID string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p models.Payment) bool { return orderID == "" || p.OrderID == orderID }), nil
}

func (r *MemoryPaymentRepository) FindByOrderIDs(_ context.Context, orderIDs []string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	return r.filter(func(p models.Payment) bool { return wanted[p.OrderID] }), nil
}

func (r *MemoryPaymentRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := clonePayment(r.items[i])
	return &p, nil
}

func (r *MemoryPaymentRepository) Update(_ context.Context, id primitive.ObjectID, patch models.PaymentPatch) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := &r.items[i]
	fields := []struct {
		dst *string
		src *string
	}{
		{&p.PaymentMethod, patch.PaymentMethod},
		{&p.MobileNumber, patch.MobileNumber},
		{&p.AccountName, patch.AccountName},
		{&p.AccountNumber, patch.AccountNumber},
		{&p.BankName, patch.BankName},
		{&p.CNIC, patch.CNIC},
		{&p.TransactionRef, patch.TransactionRef},
		{&p.PaymentProof, patch.PaymentProof},
		{&p.Status, patch.Status},
	}
	for _, f := range fields {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if len(patch.Extra) > 0 {
		if p.Extra == nil {
			p.Extra = map[string]string{}
		}
		for k, v := range patch.Extra {
			p.Extra[k] = v
		}
	}
	p.UpdatedAt = time.Now()
	out := clonePayment(*p)
	return &out, nil
}

func (r *MemoryPaymentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// Crypto payments

type MemoryCryptoPaymentRepository struct {
	mu    sync.RWMutex
	items []models.CryptoPayment
}

func cloneCryptoPayment(p models.CryptoPayment) models.CryptoPayment {
	if p.Items != nil {
		p.Items = append([]models.CryptoItem{}, p.Items...)
	}
	if p.CompletedAt != nil {
		completed := *p.CompletedAt
		p.CompletedAt = &completed
	}
	return p
}

// Create rejects a second payment with the same transactionId, matching the
// unique index on the Mongo collection.
func (r *MemoryCryptoPaymentRepository) Create(_ context.Context, payment *models.CryptoPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.TransactionID == payment.TransactionID {
			return ErrDuplicate
		}
	}
	stamp(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	r.items = append(r.items, cloneCryptoPayment(*payment))
	return nil
}

func (r *MemoryCryptoPaymentRepository) FindAll(_ context.Context) ([]models.CryptoPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.CryptoPayment, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, cloneCryptoPayment(p))
	}
	return page(out, func(p models.CryptoPayment) time.Time { return p.CreatedAt }, ListOptions{}), nil
}

func (r *MemoryCryptoPaymentRepository) FindByTransactionID(_ context.Context, transactionID string) (*models.CryptoPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.TransactionID == transactionID {
			out := cloneCryptoPayment(p)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCryptoPaymentRepository) Transition(_ context.Context, transactionID, from, to string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		p := &r.items[i]
		if p.TransactionID != transactionID || p.Status != from {
			continue
		}
		p.Status = to
		p.UpdatedAt = at
		if to == models.CryptoStatusCompleted {
			completed := at
			p.CompletedAt = &completed
		}
		return true, nil
	}
	return false, nil
}

func (r *MemoryCryptoPaymentRepository) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for i := range r.items {
		p := &r.items[i]
		if p.Status == models.CryptoStatusPending && p.ExpiresAt.Before(now) {
			p.Status = models.CryptoStatusExpired
			p.UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}

// Preferences

type MemoryPreferencesRepository struct {
	mu    sync.RWMutex
	prefs map[string]models.AdminPreferences
}

func (r *MemoryPreferencesRepository) Get(_ context.Context, owner string) (*models.AdminPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.prefs[owner]
	if !ok {
		return nil, ErrNotFound
	}
	prefs.OpenMenus = append([]string(nil), prefs.OpenMenus...)
	return &prefs, nil
}

func (r *MemoryPreferencesRepository) Save(_ context.Context, prefs *models.AdminPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	stored := *prefs
	stored.OpenMenus = append([]string(nil), prefs.OpenMenus...)
	r.prefs[prefs.Owner] = stored
	return nil
}
