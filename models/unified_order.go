package models

import "time"

// OrderKind tags which collection a UnifiedOrder came from.
type OrderKind string

const (
	KindOrder       OrderKind = "order"
	KindTransaction OrderKind = "transaction"
)

// UnifiedOrder is the canonical row of the reconciled order list. Native
// orders carry their Payment rows; transactions carry their payment status
// inline.
type UnifiedOrder struct {
	ID             string         `json:"_id"`
	Kind           OrderKind      `json:"kind"`
	Customer       Customer       `json:"customer"`
	Products       []OrderProduct `json:"products"`
	TotalQuantity  int            `json:"totalQuantity"`
	GrandTotal     float64        `json:"grandTotal"`
	ShippingMethod string         `json:"shippingMethod"`
	PaymentMethod  string         `json:"paymentMethod"`
	PaymentStatus  string         `json:"paymentStatus"`
	Status         string         `json:"status"`
	Payment        *Payment       `json:"payment,omitempty"`
	Payments       []Payment      `json:"payments,omitempty"`
	CardDetails    *CardDetails   `json:"cardDetails,omitempty"`
	ReceiptURL     string         `json:"receiptUrl,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
