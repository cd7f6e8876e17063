package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate key")
)

// ListOptions narrows and pages a listing. Zero values mean "no filter".
type ListOptions struct {
	Page          int64
	Limit         int64
	Status        string
	PaymentMethod string
	Search        string
}

// Skip returns the number of documents before the requested page.
func (o ListOptions) Skip() int64 {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	ExistsByName(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub *models.Subcategory) error
	UpdateSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID, patch models.SubcategoryPatch) (*models.Subcategory, error)
	RemoveSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, opts ListOptions) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, opts ListOptions) ([]models.Transaction, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindAll(ctx context.Context, orderID string) ([]models.Payment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]models.Payment, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.PaymentPatch) (*models.Payment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CryptoPaymentRepository interface {
	Create(ctx context.Context, payment *models.CryptoPayment) error
	FindAll(ctx context.Context) ([]models.CryptoPayment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.CryptoPayment, error)
	// Transition moves a payment from one status to another. It reports
	// false when the payment was no longer in the from status.
	Transition(ctx context.Context, transactionID, from, to string, at time.Time) (bool, error)
	// ExpireStale marks every pending payment whose expiresAt is before now
	// as expired and returns how many changed.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type PreferencesRepository interface {
	Get(ctx context.Context, owner string) (*models.AdminPreferences, error)
	Save(ctx context.Context, prefs *models.AdminPreferences) error
}

// Store groups every repository the application needs.
type Store struct {
	Categories     CategoryRepository
	Products       ProductRepository
	Orders         OrderRepository
	Transactions   TransactionRepository
	Payments       PaymentRepository
	CryptoPayments CryptoPaymentRepository
	Preferences    PreferencesRepository
}
