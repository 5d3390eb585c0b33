// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/models"
)

// PaymentService opens a Stripe PaymentIntent for an issued ticket. It is
// disabled when no secret key is configured.
type PaymentService struct {
	api      *client.API
	currency string
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(cfg config.PaymentConfig) *PaymentService {
	s := &PaymentService{currency: cfg.Currency}
	if cfg.StripeSecretKey != "" {
		s.api = client.New(cfg.StripeSecretKey, nil)
	}
	if s.currency == "" {
		s.currency = "usd"
	}
	return s
}

func (s *PaymentService) Enabled() bool {
	return s != nil && s.api != nil
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, ticket *models.Ticket) (*PaymentIntentResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("payments are not configured")
	}

	// Stripe amounts are integer minor units.
	amountInCents := decimal.NewFromFloat(ticket.Amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(ticket.Purchaser),
	}
	params.Context = ctx
	params.AddMetadata("ticket_code", ticket.Code)
	params.AddMetadata("ticket_id", ticket.ID)
	params.SetIdempotencyKey("ticket-" + ticket.Code)

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentID:    intent.ID,
		Status:       string(intent.Status),
	}, nil
}
