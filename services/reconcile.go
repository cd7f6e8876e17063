package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Fallbacks used when a transaction was checked out without the field.
const (
	DefaultName           = "NAME NOT PROVIDED"
	DefaultEmail          = "EMAIL NOT PROVIDED"
	DefaultAddress        = "ADDRESS NOT PROVIDED"
	DefaultCity           = "CITY NOT PROVIDED"
	DefaultZip            = "ZIP NOT PROVIDED"
	DefaultPhone          = "PHONE NOT PROVIDED"
	DefaultCountry        = "COUNTRY NOT PROVIDED"
	DefaultPaymentMethod  = "card"
	DefaultShippingMethod = "Standard"
)

// ErrInvalidEdit is returned for edits that carry nothing or an unknown status.
var ErrInvalidEdit = errors.New("invalid order edit")

// OrderView selects which sources the reconciled list draws from.
type OrderView string

const (
	ViewAll          OrderView = "all"
	ViewOrders       OrderView = "orders"
	ViewTransactions OrderView = "transactions"
)

// ParseOrderView accepts "", "all", "orders" and "transactions".
func ParseOrderView(s string) (OrderView, error) {
	switch v := OrderView(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewOrders, ViewTransactions:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

type ListQuery struct {
	View          OrderView
	Page          int64
	Limit         int64
	Status        string
	PaymentMethod string
	Search        string
}

func (q ListQuery) options() repositories.ListOptions {
	return repositories.ListOptions{
		Page:          q.Page,
		Limit:         q.Limit,
		Status:        q.Status,
		PaymentMethod: q.PaymentMethod,
		Search:        q.Search,
	}
}

// OrderPage is one page of the reconciled list. View, Page and Limit echo the
// request and ServerTime lets a client drop responses that arrive out of order.
type OrderPage struct {
	Items      []models.UnifiedOrder `json:"items"`
	View       OrderView             `json:"view"`
	Page       int64                 `json:"page"`
	Limit      int64                 `json:"limit"`
	Total      int64                 `json:"total"`
	TotalPages int64                 `json:"totalPages"`
	ServerTime time.Time             `json:"serverTime"`
}

// OrderEdit is what the dashboard may change on any reconciled row.
type OrderEdit struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"paymentStatus"`
	ShippingMethod *string `json:"shippingMethod"`
}

func (e OrderEdit) validate() error {
	if e.Status == nil && e.PaymentStatus == nil && e.ShippingMethod == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalidEdit)
	}
	if e.Status != nil && !models.IsValidOrderStatus(*e.Status) {
		return fmt.Errorf("%w: status must be one of Pending, Shipped, Delivered", ErrInvalidEdit)
	}
	return nil
}

// OrderSource is one row before normalisation: either a native order or a
// Stripe transaction. Each variant knows how to present and edit itself.
type OrderSource interface {
	Kind() models.OrderKind
	CreatedAt() time.Time
	// Normalize builds the canonical row. payments is ignored by variants
	// that carry their payment inline.
	Normalize(payments []models.Payment) models.UnifiedOrder
	apply(ctx context.Context, store *repositories.Store, edit OrderEdit) (OrderSource, error)
}

type orderSource struct{ order models.Order }

func (s orderSource) Kind() models.OrderKind { return models.KindOrder }
func (s orderSource) CreatedAt() time.Time   { return s.order.CreatedAt }

func (s orderSource) Normalize(payments []models.Payment) models.UnifiedOrder {
	o := s.order
	id := o.ID.Hex()
	u := models.UnifiedOrder{
		ID:             id,
		Kind:           models.KindOrder,
		Customer:       o.Customer,
		Products:       o.Products,
		TotalQuantity:  o.TotalQuantity,
		GrandTotal:     o.GrandTotal,
		ShippingMethod: o.ShippingMethod,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
	}
	if u.Products == nil {
		u.Products = []models.OrderProduct{}
	}

	// Payments are matched by scanning on orderId; an order may have several.
	var latest *models.Payment
	for i := range payments {
		if payments[i].OrderID != id {
			continue
		}
		u.Payments = append(u.Payments, payments[i])
		if latest == nil || payments[i].CreatedAt.After(latest.CreatedAt) {
			latest = &payments[i]
		}
	}
	if latest != nil {
		p := *latest
		u.Payment = &p
	} else {
		u.Payment = &models.Payment{
			OrderID:       id,
			PaymentMethod: o.PaymentMethod,
			Status:        "pending",
			Placeholder:   true,
		}
	}
	if u.PaymentStatus == "" {
		u.PaymentStatus = u.Payment.Status
	}
	return u
}

func (s orderSource) apply(ctx context.Context, store *repositories.Store, edit OrderEdit) (OrderSource, error) {
	updated, err := store.Orders.Update(ctx, s.order.ID, models.OrderPatch{
		Status:         edit.Status,
		PaymentStatus:  edit.PaymentStatus,
		ShippingMethod: edit.ShippingMethod,
	})
	if err != nil {
		return nil, err
	}
	return orderSource{order: *updated}, nil
}

type transactionSource struct{ tx models.Transaction }

func (s transactionSource) Kind() models.OrderKind { return models.KindTransaction }
func (s transactionSource) CreatedAt() time.Time   { return s.tx.CreatedAt }

func (s transactionSource) Normalize(_ []models.Payment) models.UnifiedOrder {
	t := s.tx
	addr := models.TransactionAddress{}
	if t.User.Address != nil {
		addr = *t.User.Address
	}

	u := models.UnifiedOrder{
		ID:   t.ID.Hex(),
		Kind: models.KindTransaction,
		Customer: models.Customer{
			Name:    orDefault(t.User.Name, DefaultName),
			Email:   orDefault(t.User.Email, DefaultEmail),
			Address: orDefault(addr.Street, DefaultAddress),
			City:    orDefault(addr.City, DefaultCity),
			Zip:     orDefault(addr.Zip, DefaultZip),
			Phone:   orDefault(t.User.Phone, DefaultPhone),
			Country: orDefault(addr.Country, DefaultCountry),
		},
		Products:       make([]models.OrderProduct, 0, len(t.CartItems)),
		ShippingMethod: orDefault(t.ShippingMethod, DefaultShippingMethod),
		PaymentMethod:  orDefault(t.PaymentDetails.Method, DefaultPaymentMethod),
		PaymentStatus:  orDefault(t.PaymentDetails.Status, models.PaymentStatusRequiresPaymentMethod),
		Status:         orDefault(t.Status, models.OrderStatusPending),
		CardDetails:    t.PaymentDetails.CardDetails,
		ReceiptURL:     t.PaymentDetails.ReceiptURL,
		CreatedAt:      t.CreatedAt,
	}
	for _, item := range t.CartItems {
		line := models.OrderProduct{
			Name:       item.Product.Name,
			Price:      item.Product.Price,
			Quantity:   item.Quantity,
			TotalPrice: item.Product.Price * float64(item.Quantity),
		}
		u.Products = append(u.Products, line)
		u.TotalQuantity += line.Quantity
		u.GrandTotal += line.TotalPrice
	}
	if len(t.CartItems) == 0 && t.PaymentDetails.Amount > 0 {
		u.GrandTotal = float64(t.PaymentDetails.Amount) / 100
	}
	return u
}

func (s transactionSource) apply(ctx context.Context, store *repositories.Store, edit OrderEdit) (OrderSource, error) {
	updated, err := store.Transactions.Update(ctx, s.tx.ID, models.TransactionPatch{
		Status:         edit.Status,
		PaymentStatus:  edit.PaymentStatus,
		ShippingMethod: edit.ShippingMethod,
	})
	if err != nil {
		return nil, err
	}
	return transactionSource{tx: *updated}, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// OrderReconciler merges native orders and Stripe transactions into one list.
type OrderReconciler struct {
	store *repositories.Store
	now   func() time.Time
}

func NewOrderReconciler(store *repositories.Store) *OrderReconciler {
	return &OrderReconciler{store: store, now: time.Now}
}

// List fetches the requested sources concurrently and merges them. Any source
// failure fails the whole call.
func (r *OrderReconciler) List(ctx context.Context, q ListQuery) (*OrderPage, error) {
	if q.View == "" {
		q.View = ViewAll
	}
	opts := q.options()

	var (
		orders       []models.Order
		payments     []models.Payment
		transactions []models.Transaction
		ordersTotal  int64
		txTotal      int64
	)

	g, gctx := errgroup.WithContext(ctx)
	if q.View != ViewTransactions {
		g.Go(func() error {
			var err error
			orders, ordersTotal, err = r.store.Orders.List(gctx, opts)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			if len(orders) == 0 {
				return nil
			}
			ids := make([]string, len(orders))
			for i, o := range orders {
				ids[i] = o.ID.Hex()
			}
			payments, err = r.store.Payments.FindByOrderIDs(gctx, ids)
			if err != nil {
				return fmt.Errorf("list payments: %w", err)
			}
			return nil
		})
	}
	if q.View != ViewOrders {
		g.Go(func() error {
			var err error
			transactions, txTotal, err = r.store.Transactions.List(gctx, opts)
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sources := make([]OrderSource, 0, len(orders)+len(transactions))
	for _, o := range orders {
		sources = append(sources, orderSource{order: o})
	}
	for _, t := range transactions {
		sources = append(sources, transactionSource{tx: t})
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].CreatedAt().After(sources[j].CreatedAt())
	})

	items := make([]models.UnifiedOrder, len(sources))
	for i, s := range sources {
		items[i] = s.Normalize(payments)
	}

	totalPages := models.TotalPages(ordersTotal, q.Limit)
	if tp := models.TotalPages(txTotal, q.Limit); tp > totalPages {
		totalPages = tp
	}

	return &OrderPage{
		Items:      items,
		View:       q.View,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      ordersTotal + txTotal,
		TotalPages: totalPages,
		ServerTime: r.now(),
	}, nil
}

// Find loads a single row of either kind.
func (r *OrderReconciler) Find(ctx context.Context, kind models.OrderKind, id primitive.ObjectID) (OrderSource, error) {
	switch kind {
	case models.KindOrder:
		order, err := r.store.Orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return orderSource{order: *order}, nil
	case models.KindTransaction:
		tx, err := r.store.Transactions.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return transactionSource{tx: *tx}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEdit, kind)
	}
}

// Update applies edit through the row's own update path and returns the
// normalised result.
func (r *OrderReconciler) Update(ctx context.Context, kind models.OrderKind, id primitive.ObjectID, edit OrderEdit) (*models.UnifiedOrder, error) {
	if err := edit.validate(); err != nil {
		return nil, err
	}
	source, err := r.Find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	updated, err := source.apply(ctx, r.store, edit)
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	if updated.Kind() == models.KindOrder {
		payments, err = r.store.Payments.FindAll(ctx, id.Hex())
		if err != nil {
			return nil, fmt.Errorf("list payments: %w", err)
		}
	}
	u := updated.Normalize(payments)
	return &u, nil
}
