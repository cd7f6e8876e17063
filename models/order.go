package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses accepted by the back-office.
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)

// IsValidOrderStatus reports whether s is one of the known order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type Customer struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Address string `json:"address" bson:"address" validate:"required"`
	City    string `json:"city" bson:"city" validate:"required"`
	Zip     string `json:"zip" bson:"zip"`
	Phone   string `json:"phone" bson:"phone" validate:"required"`
	Country string `json:"country" bson:"country" validate:"required"`
}

type OrderProduct struct {
	Name       string  `json:"name" bson:"name" validate:"required"`
	Price      float64 `json:"price" bson:"price" validate:"gte=0"`
	Quantity   int     `json:"quantity" bson:"quantity" validate:"gte=1"`
	TotalPrice float64 `json:"totalPrice" bson:"totalPrice"`
}

// Order is a manually placed purchase paid offline (cash, bank transfer,
// mobile wallet). Its payment details live in a separate Payment record.
type Order struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Customer       Customer           `json:"customer" bson:"customer"`
	Products       []OrderProduct     `json:"products" bson:"products"`
	TotalQuantity  int                `json:"totalQuantity" bson:"totalQuantity"`
	GrandTotal     float64            `json:"grandTotal" bson:"grandTotal"`
	ShippingMethod string             `json:"shippingMethod" bson:"shippingMethod"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus  string             `json:"paymentStatus,omitempty" bson:"paymentStatus,omitempty"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ComputeTotals fills in each line's totalPrice and the order's totalQuantity
// and grandTotal from the submitted line items.
func (o *Order) ComputeTotals() {
	o.TotalQuantity = 0
	o.GrandTotal = 0
	for i := range o.Products {
		p := &o.Products[i]
		p.TotalPrice = p.Price * float64(p.Quantity)
		o.TotalQuantity += p.Quantity
		o.GrandTotal += p.TotalPrice
	}
}

type OrderPatch struct {
	Customer       *Customer
	Products       []OrderProduct
	ShippingMethod *string
	PaymentMethod  *string
	PaymentStatus  *string
	Status         *string
}

func (p OrderPatch) Empty() bool {
	return p.Customer == nil && p.Products == nil && p.ShippingMethod == nil &&
		p.PaymentMethod == nil && p.PaymentStatus == nil && p.Status == nil
}
