// internal/services/checkout_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/models"
)

// CheckoutService runs a purchase and, when the settled amount is positive,
// issues the ticket and everything that hangs off it.
type CheckoutService struct {
	purchases     *PurchaseService
	tickets       *TicketService
	payments      *PaymentService
	notifications *NotificationService
	events        EventPublisher
	log           *logrus.Logger
}

type CheckoutResult struct {
	*models.Settlement
	Ticket              *models.TicketDTO `json:"ticket"`
	PaymentClientSecret string            `json:"paymentClientSecret,omitempty"`
}

// NothingPurchasedError carries the settlement of a purchase that bought
// nothing, so the caller can still report why each line was left behind.
type NothingPurchasedError struct {
	Settlement *models.Settlement
}

func (e *NothingPurchasedError) Error() string {
	return ErrNothingPurchased.Error()
}

func (e *NothingPurchasedError) Unwrap() error {
	return ErrNothingPurchased
}

func NewCheckoutService(purchases *PurchaseService, tickets *TicketService, payments *PaymentService, notifications *NotificationService, events EventPublisher, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		purchases:     purchases,
		tickets:       tickets,
		payments:      payments,
		notifications: notifications,
		events:        events,
		log:           log,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, cartID, purchaser string) (*CheckoutResult, error) {
	settlement, err := s.purchases.Purchase(ctx, cartID, purchaser)
	if err != nil {
		return nil, err
	}
	if len(settlement.PurchasedItems) == 0 {
		return nil, &NothingPurchasedError{Settlement: settlement}
	}
	if settlement.Amount <= 0 {
		// Only free items were bought. Stock is committed, no ticket.
		s.log.WithFields(logrus.Fields{
			"cart_id":   cartID,
			"purchaser": purchaser,
			"purchased": len(settlement.PurchasedItems),
		}).Info("Free items purchased without ticket")
		return &CheckoutResult{Settlement: settlement}, nil
	}

	ticket, err := s.tickets.Issue(ctx, settlement.Amount, purchaser)
	if err != nil {
		// Stock is already debited at this point; keep enough context to
		// reconcile by hand.
		s.log.WithError(err).WithFields(logrus.Fields{
			"cart_id":   cartID,
			"purchaser": purchaser,
			"amount":    settlement.Amount,
		}).Error("Purchase settled but ticket could not be issued")
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	dto := models.NewTicketDTO(ticket)
	result := &CheckoutResult{Settlement: settlement, Ticket: &dto}

	if s.payments.Enabled() {
		intent, err := s.payments.CreatePaymentIntent(ctx, ticket)
		if err != nil {
			s.log.WithError(err).WithField("ticket", ticket.Code).Warn("Failed to open payment intent")
		} else {
			result.PaymentClientSecret = intent.ClientSecret
		}
	}

	if s.notifications != nil {
		s.notifications.SendAsync("purchase_receipt", func(ctx context.Context) error {
			return s.notifications.SendPurchaseReceipt(ctx, ticket, settlement)
		})
	}
	publish(ctx, s.events, s.log, EventTicketIssued, dto)

	s.log.WithFields(logrus.Fields{
		"ticket":    ticket.Code,
		"purchaser": ticket.Purchaser,
		"amount":    ticket.Amount,
	}).Info("Ticket issued")

	return result, nil
}
