// internal/services/ticket_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

const (
	ticketCodePrefix   = "TCK-"
	ticketCodeLength   = 12
	ticketCodeGroup    = 4
	ticketCodeAttempts = 3
)

type TicketService struct {
	tickets store.TicketStore
	now     func() time.Time
}

func NewTicketService(tickets store.TicketStore) *TicketService {
	return &TicketService{tickets: tickets, now: time.Now}
}

// Issue persists a receipt for a settled purchase. A code collision is
// retried with a fresh code.
func (s *TicketService) Issue(ctx context.Context, amount float64, purchaser string) (*models.Ticket, error) {
	if amount <= 0 {
		return nil, validationError(fmt.Errorf("ticket amount must be positive, got %v", amount))
	}
	purchaser = strings.ToLower(strings.TrimSpace(purchaser))
	if purchaser == "" {
		return nil, validationError(errors.New("ticket purchaser is required"))
	}

	var lastErr error
	for attempt := 0; attempt < ticketCodeAttempts; attempt++ {
		code, err := utils.RandomCode(ticketCodeLength, ticketCodeGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}

		ticket := &models.Ticket{
			Code:             ticketCodePrefix + code,
			PurchaseDatetime: s.now(),
			Amount:           amount,
			Purchaser:        purchaser,
		}
		err = s.tickets.CreateTicket(ctx, ticket)
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("failed to create ticket: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create ticket: %w", lastErr)
}

func (s *TicketService) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	ticket, err := s.tickets.FindTicketByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return ticket, nil
}

func (s *TicketService) ListForPurchaser(ctx context.Context, email string) ([]models.TicketDTO, error) {
	tickets, err := s.tickets.ListTicketsByPurchaser(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	out := make([]models.TicketDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, models.NewTicketDTO(&tickets[i]))
	}
	return out, nil
}
