package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrGatewayNotConfigured is returned when STRIPE_SECRET_KEY is unset.
var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// PaymentIntent is the subset of a gateway payment intent the API uses.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Card         *models.CardDetails
	ReceiptURL   string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// PaymentGateway is the card processor behind transactions and checkout.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	// GetPaymentIntent returns the intent with card details and receipt of
	// its latest charge, when there is one.
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, items []models.CartItem) (*CheckoutSession, error)
}

// StripeService handles interactions with the Stripe API
type StripeService struct {
	api        *client.API
	currency   string
	successURL string
	cancelURL  string
}

type StripeConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// NewStripeService creates a new Stripe service instance
func NewStripeService(cfg StripeConfig) *StripeService {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	s := &StripeService{
		currency:   strings.ToLower(cfg.Currency),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
	if cfg.SecretKey == "" {
		log.Printf("WARNING: STRIPE_SECRET_KEY is missing, card payments are disabled")
		return s
	}

	s.api = &client.API{}
	s.api.Init(cfg.SecretKey, nil)
	log.Printf("Stripe Service Configuration:")
	log.Printf("  Currency: %s", s.currency)
	log.Printf("  Secret: [CONFIGURED]")
	return s
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if s.api == nil {
		return nil, ErrGatewayNotConfigured
	}
	if currency == "" {
		currency = s.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (s *StripeService) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if s.api == nil {
		return nil, ErrGatewayNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent %s: %w", id, err)
	}

	out := &PaymentIntent{ID: pi.ID, Status: string(pi.Status)}
	if charge := pi.LatestCharge; charge != nil {
		out.ReceiptURL = charge.ReceiptURL
		if details := charge.PaymentMethodDetails; details != nil && details.Card != nil {
			out.Card = &models.CardDetails{
				Brand: fmt.Sprint(details.Card.Brand),
				Last4: details.Card.Last4,
			}
		}
	}
	return out, nil
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, items []models.CartItem) (*CheckoutSession, error) {
	if s.api == nil {
		return nil, ErrGatewayNotConfigured
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Product.Name),
		}
		if strings.HasPrefix(item.Product.Image, "http") {
			product.Images = stripe.StringSlice([]string{item.Product.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(utils.ToMinorUnits(item.Product.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(s.successURL),
		CancelURL:          stripe.String(s.cancelURL),
	}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// Currency is the default currency for new intents.
func (s *StripeService) Currency() string { return s.currency }
