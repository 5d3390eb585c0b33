// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/storefront-labs/storefront-api/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("unique constraint violated")
	ErrStale             = errors.New("record changed since it was read")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("store unavailable")
)

// Sort orders results by a single field. A zero Sort keeps the store's
// natural order.
type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) IsZero() bool {
	return s.Field == ""
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Status      *bool
	Stock       *int
	Category    *string
	Thumbnails  *[]string
}

func (p ProductPatch) Apply(product *models.Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Code != nil {
		product.Code = *p.Code
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Thumbnails != nil {
		product.Thumbnails = append([]string(nil), (*p.Thumbnails)...)
	}
}

type ProductStore interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	FindProducts(ctx context.Context, filter Filter, sort Sort, skip, limit int) ([]models.Product, error)
	CountProducts(ctx context.Context, filter Filter) (int64, error)
	FindProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// DecrementStock atomically subtracts qty when the current stock covers
	// it and returns the updated product. It returns ErrInsufficientStock
	// and leaves stock untouched otherwise.
	DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error)
}

type CartStore interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	FindCart(ctx context.Context, id string) (*models.Cart, error)
	// SaveCart persists cart.Items only if the stored version still equals
	// cart.Version, then bumps cart.Version. A mismatch yields ErrStale.
	SaveCart(ctx context.Context, cart *models.Cart) error
}

type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	ListTicketsByPurchaser(ctx context.Context, email string) ([]models.Ticket, error)
}

type UserStore interface {
	// RegisterUser creates the cart and the user together; either both
	// exist afterwards or neither does.
	RegisterUser(ctx context.Context, user *models.User, cart *models.Cart) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, hash string, previous *string) error
}

// Store is the full persistence contract implemented by every adapter.
type Store interface {
	ProductStore
	CartStore
	TicketStore
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
