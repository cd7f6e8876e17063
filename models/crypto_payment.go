package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CryptoStatusPending   = "pending"
	CryptoStatusCompleted = "completed"
	CryptoStatusFailed    = "failed"
	CryptoStatusExpired   = "expired"
)

type CryptoCustomer struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
}

type CryptoItem struct {
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type CryptoPayment struct {
	ID                primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Amount            float64            `json:"amount" bson:"amount"`
	Currency          string             `json:"currency" bson:"currency"`
	CryptoAmount      float64            `json:"cryptoAmount" bson:"cryptoAmount"`
	CryptoCurrency    string             `json:"cryptoCurrency" bson:"cryptoCurrency"`
	Status            string             `json:"status" bson:"status"`
	TransactionID     string             `json:"transactionId" bson:"transactionId"`
	CoinpaymentsTxnID string             `json:"coinpaymentsTxnId" bson:"coinpaymentsTxnId"`
	WalletAddress     string             `json:"walletAddress" bson:"walletAddress"`
	QRCodeURL         string             `json:"qrCodeUrl" bson:"qrCodeUrl"`
	Customer          CryptoCustomer     `json:"customer" bson:"customer"`
	Items             []CryptoItem       `json:"items,omitempty" bson:"items,omitempty"`
	ExpiresAt         time.Time          `json:"expiresAt" bson:"expiresAt"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}
