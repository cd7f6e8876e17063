package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"gopkg.in/gomail.v2"
)

// Mailer sends customer-facing emails.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer returns an SMTP mailer, or a no-op one when SMTP_HOST is unset.
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		log.Println("SMTP_HOST not set, order emails are disabled")
		return noopMailer{}
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	if order.Customer.Email == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Customer.Email)
	msg.SetHeader("Subject", orderConfirmationSubject(order))
	msg.SetBody("text/plain", orderConfirmationBody(order))
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send order confirmation to %s: %w", order.Customer.Email, err)
	}
	return nil
}

type noopMailer struct{}

func (noopMailer) SendOrderConfirmation(context.Context, models.Order) error { return nil }

func orderConfirmationSubject(order models.Order) string {
	return fmt.Sprintf("Order %s received", order.ID.Hex())
}

func orderConfirmationBody(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order. Here is what we received:\n\n", order.Customer.Name)
	for _, p := range order.Products {
		fmt.Fprintf(&b, "  %d x %s @ %.2f = %.2f\n", p.Quantity, p.Name, p.Price, p.TotalPrice)
	}
	fmt.Fprintf(&b, "\nItems: %d\nTotal: %.2f\nPayment: %s\nShipping: %s\n", order.TotalQuantity, order.GrandTotal, order.PaymentMethod, order.ShippingMethod)
	fmt.Fprintf(&b, "Deliver to: %s, %s %s, %s\n", order.Customer.Address, order.Customer.City, order.Customer.Zip, order.Customer.Country)
	b.WriteString("\nWe will let you know when it ships.\n")
	return b.String()
}
