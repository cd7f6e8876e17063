package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/google/uuid"
)

const (
	// BTC payments always go to this address.
	MockBTCAddress = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"

	cryptoPaymentTTL    = 10 * time.Minute
	cryptoConfirmAfter  = 60 * time.Second
	qrServiceURL        = "https://api.qrserver.com/v1/create-qr-code/"
	cryptoAmountDecimal = 1e8
)

// Fiat price of one unit of each supported currency.
var mockRates = map[string]float64{
	"BTC":  65000,
	"ETH":  3500,
	"LTC":  85,
	"USDT": 1,
}

var fiatCurrencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidCryptoPayment wraps every input validation failure.
var ErrInvalidCryptoPayment = errors.New("invalid crypto payment")

type CreateCryptoPaymentInput struct {
	Amount         float64               `json:"amount"`
	Currency       string                `json:"currency"`
	CryptoCurrency string                `json:"cryptoCurrency"`
	Customer       models.CryptoCustomer `json:"customer"`
	Items          []models.CryptoItem   `json:"items"`
}

// PaymentConfirmationProvider creates crypto payment requests and reports
// whether they have been paid.
type PaymentConfirmationProvider interface {
	CreatePayment(ctx context.Context, in CreateCryptoPaymentInput) (*models.CryptoPayment, error)
	CheckPaymentStatus(ctx context.Context, transactionID string) (*models.CryptoPayment, error)
}

// MockCryptoProvider pretends every payment is confirmed a minute after it
// was created. It is not connected to any blockchain.
type MockCryptoProvider struct {
	repo repositories.CryptoPaymentRepository
	now  func() time.Time

	// OnTransition, when set, is called after a payment leaves pending.
	OnTransition func(payment *models.CryptoPayment)
}

func NewMockCryptoProvider(repo repositories.CryptoPaymentRepository) *MockCryptoProvider {
	return &MockCryptoProvider{repo: repo, now: time.Now}
}

// SupportedCryptoCurrencies lists the accepted currency codes.
func SupportedCryptoCurrencies() []string {
	return []string{"BTC", "ETH", "LTC", "USDT"}
}

func (p *MockCryptoProvider) CreatePayment(ctx context.Context, in CreateCryptoPaymentInput) (*models.CryptoPayment, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	cryptoCurrency := strings.ToUpper(strings.TrimSpace(in.CryptoCurrency))

	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidCryptoPayment)
	}
	if !fiatCurrencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidCryptoPayment)
	}
	rate, ok := mockRates[cryptoCurrency]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported crypto currency %q", ErrInvalidCryptoPayment, in.CryptoCurrency)
	}

	address, err := walletAddress(cryptoCurrency)
	if err != nil {
		return nil, err
	}
	txnRef, err := randomHex(16)
	if err != nil {
		return nil, err
	}

	now := p.now()
	payment := &models.CryptoPayment{
		Amount:            in.Amount,
		Currency:          currency,
		CryptoAmount:      math.Round(in.Amount/rate*cryptoAmountDecimal) / cryptoAmountDecimal,
		CryptoCurrency:    cryptoCurrency,
		Status:            models.CryptoStatusPending,
		TransactionID:     "CP" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
		CoinpaymentsTxnID: "MOCK" + strings.ToUpper(txnRef),
		WalletAddress:     address,
		Customer:          in.Customer,
		Items:             in.Items,
		ExpiresAt:         now.Add(cryptoPaymentTTL),
		CreatedAt:         now,
	}
	payment.QRCodeURL = QRCodeURL(payment.WalletAddress)

	if err := p.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("save crypto payment: %w", err)
	}
	log.Printf("Crypto payment %s created: %.8f %s to %s", payment.TransactionID, payment.CryptoAmount, cryptoCurrency, address)
	return payment, nil
}

// CheckPaymentStatus moves a pending payment to expired once expiresAt has
// passed, or to completed once it is older than a minute. Terminal payments
// are returned unchanged.
func (p *MockCryptoProvider) CheckPaymentStatus(ctx context.Context, transactionID string) (*models.CryptoPayment, error) {
	payment, err := p.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.CryptoStatusPending {
		return payment, nil
	}

	now := p.now()
	var next string
	switch {
	case now.After(payment.ExpiresAt):
		next = models.CryptoStatusExpired
	case now.Sub(payment.CreatedAt) > cryptoConfirmAfter:
		next = models.CryptoStatusCompleted
	default:
		return payment, nil
	}

	changed, err := p.repo.Transition(ctx, transactionID, models.CryptoStatusPending, next, now)
	if err != nil {
		return nil, fmt.Errorf("update crypto payment: %w", err)
	}
	// Re-read either way: a concurrent check may have won the transition.
	payment, err = p.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if changed {
		log.Printf("Crypto payment %s is now %s", transactionID, payment.Status)
		if p.OnTransition != nil {
			p.OnTransition(payment)
		}
	}
	return payment, nil
}

// ExpireStale marks every overdue pending payment as expired.
func (p *MockCryptoProvider) ExpireStale(ctx context.Context) (int64, error) {
	n, err := p.repo.ExpireStale(ctx, p.now())
	if err != nil {
		return 0, fmt.Errorf("expire crypto payments: %w", err)
	}
	return n, nil
}

// QRCodeURL points at a hosted PNG of data.
func QRCodeURL(data string) string {
	q := url.Values{}
	q.Set("size", "200x200")
	q.Set("data", data)
	return qrServiceURL + "?" + q.Encode()
}

func walletAddress(cryptoCurrency string) (string, error) {
	if cryptoCurrency == "BTC" {
		return MockBTCAddress, nil
	}
	suffix, err := randomHex(16)
	if err != nil {
		return "", err
	}
	return "mock_" + strings.ToLower(cryptoCurrency) + "_" + suffix, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
