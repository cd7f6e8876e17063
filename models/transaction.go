package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentIntent status a freshly created Stripe intent starts in.
const PaymentStatusRequiresPaymentMethod = "requires_payment_method"

type TransactionAddress struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	Zip     string `json:"zip,omitempty" bson:"zip,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type TransactionUser struct {
	ID      string              `json:"id,omitempty" bson:"id,omitempty"`
	Name    string              `json:"name,omitempty" bson:"name,omitempty"`
	Email   string              `json:"email,omitempty" bson:"email,omitempty"`
	Phone   string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Address *TransactionAddress `json:"address,omitempty" bson:"address,omitempty"`
}

type CartProduct struct {
	ID    string  `json:"id,omitempty" bson:"id,omitempty"`
	Name  string  `json:"name" bson:"name" validate:"required"`
	Price float64 `json:"price" bson:"price" validate:"gte=0"`
	Image string  `json:"image,omitempty" bson:"image,omitempty"`
}

type CartItem struct {
	Product  CartProduct `json:"product" bson:"product" validate:"required"`
	Quantity int         `json:"quantity" bson:"quantity" validate:"gte=1"`
}

type CardDetails struct {
	Brand string `json:"brand,omitempty" bson:"brand,omitempty"`
	Last4 string `json:"last4,omitempty" bson:"last4,omitempty"`
}

type PaymentDetails struct {
	PaymentIntentID string       `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	Amount          int64        `json:"amount" bson:"amount"` // minor units
	Currency        string       `json:"currency" bson:"currency"`
	Status          string       `json:"status" bson:"status"`
	Method          string       `json:"method,omitempty" bson:"method,omitempty"`
	CardDetails     *CardDetails `json:"cardDetails,omitempty" bson:"cardDetails,omitempty"`
	ReceiptURL      string       `json:"receiptUrl,omitempty" bson:"receiptUrl,omitempty"`
}

// Transaction is a card checkout processed through Stripe. It carries its
// payment status inline.
type Transaction struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	User           TransactionUser    `json:"user" bson:"user"`
	CartItems      []CartItem         `json:"cartItems" bson:"cartItems"`
	PaymentDetails PaymentDetails     `json:"paymentDetails" bson:"paymentDetails"`
	Images         []string           `json:"images,omitempty" bson:"images,omitempty"`
	ShippingMethod string             `json:"shippingMethod,omitempty" bson:"shippingMethod,omitempty"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CartTotal returns Σ price × quantity over the cart.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// TransactionPatch updates a transaction. PaymentStatus, CardDetails and
// ReceiptURL live under paymentDetails in the stored document.
type TransactionPatch struct {
	Status         *string
	PaymentStatus  *string
	ShippingMethod *string
	CardDetails    *CardDetails
	ReceiptURL     *string
}

func (p TransactionPatch) Empty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.ShippingMethod == nil &&
		p.CardDetails == nil && p.ReceiptURL == nil
}
