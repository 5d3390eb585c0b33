// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-labs/storefront-api/internal/store"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrPasswordReused     = errors.New("new password must differ from the current one")
	ErrNothingPurchased   = errors.New("no products could be purchased")

	// Not-found outcomes per resource. All of them match store.ErrNotFound.
	ErrCartNotFound     = fmt.Errorf("cart: %w", store.ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product: %w", store.ErrNotFound)
	ErrTicketNotFound   = fmt.Errorf("ticket: %w", store.ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user: %w", store.ErrNotFound)
	ErrLineItemNotFound = fmt.Errorf("cart line item: %w", store.ErrNotFound)
)

// Outcome classifies an error returned by any service operation so callers
// can switch on it instead of inspecting messages.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeNotFound
	OutcomeValidation
	OutcomeConflict
	OutcomeUnauthorized
	OutcomeUnavailable
)

func OutcomeOf(err error) Outcome {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrPasswordReused),
		errors.Is(err, ErrNothingPurchased), errors.Is(err, ErrInvalidResetToken):
		return OutcomeValidation
	case errors.Is(err, store.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, ErrInvalidCredentials):
		return OutcomeUnauthorized
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return OutcomeUnavailable
	default:
		return OutcomeFailure
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// notFound rewrites a store not-found into the resource specific sentinel
// and passes every other error through.
func notFound(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}
