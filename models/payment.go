package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment captures the manual payment details an admin records against an
// Order. Method-specific fields are optional; anything else the form posts is
// kept in Extra.
type Payment struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderID        string             `json:"orderId" bson:"orderId"`
	PaymentMethod  string             `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	MobileNumber   string             `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	AccountName    string             `json:"accountName,omitempty" bson:"accountName,omitempty"`
	AccountNumber  string             `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	BankName       string             `json:"bankName,omitempty" bson:"bankName,omitempty"`
	CNIC           string             `json:"cnic,omitempty" bson:"cnic,omitempty"`
	TransactionRef string             `json:"transactionRef,omitempty" bson:"transactionRef,omitempty"`
	PaymentProof   string             `json:"paymentProof,omitempty" bson:"paymentProof,omitempty"`
	Status         string             `json:"status,omitempty" bson:"status,omitempty"`
	Extra          map[string]string  `json:"extra,omitempty" bson:"extra,omitempty"`
	Placeholder    bool               `json:"placeholder,omitempty" bson:"-"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PaymentPatch replaces any non-nil field. Extra entries are merged.
type PaymentPatch struct {
	PaymentMethod  *string
	MobileNumber   *string
	AccountName    *string
	AccountNumber  *string
	BankName       *string
	CNIC           *string
	TransactionRef *string
	PaymentProof   *string
	Status         *string
	Extra          map[string]string
}

func (p PaymentPatch) Empty() bool {
	return p.PaymentMethod == nil && p.MobileNumber == nil && p.AccountName == nil &&
		p.AccountNumber == nil && p.BankName == nil && p.CNIC == nil &&
		p.TransactionRef == nil && p.PaymentProof == nil && p.Status == nil && len(p.Extra) == 0
}
