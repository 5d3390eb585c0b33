// internal/services/cart_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

// maxCartWriteAttempts bounds the optimistic retry loop of a cart mutation.
const maxCartWriteAttempts = 5

type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	log      *logrus.Logger
}

// CartItemInput is one entry of a replace-all request. Entries without a
// product are dropped.
type CartItemInput struct {
	Product  string
	Quantity int
}

func NewCartService(carts store.CartStore, products store.ProductStore, log *logrus.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

func (s *CartService) CreateCart(ctx context.Context) (*models.CartDTO, error) {
	cart := &models.Cart{Items: models.CartItems{}}
	if err := s.carts.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return s.enrich(ctx, cart)
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.CartDTO, error) {
	cart, err := s.carts.FindCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, ErrCartNotFound)
	}
	return s.enrich(ctx, cart)
}

// AddOrIncrement merges qty into the line for productID, appending a new
// line when the cart has none. The product must exist; the cart is resolved
// first so a missing cart is reported as such.
func (s *CartService) AddOrIncrement(ctx context.Context, cartID, productID string, qty int) (*models.CartDTO, error) {
	qty = clampQuantity(qty)

	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		if _, err := s.products.FindProduct(ctx, productID); err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if i := cart.IndexOf(productID); i >= 0 {
			cart.Items[i].Quantity += qty
			return nil
		}
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: qty})
		return nil
	})
}

// RemoveItem drops the line for productID; a missing line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*models.CartDTO, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		if i := cart.IndexOf(productID); i >= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		return nil
	})
}

// SetQuantity overwrites the quantity of an existing line. It never
// creates a line.
func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, qty int) (*models.CartDTO, error) {
	qty = clampQuantity(qty)
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		i := cart.IndexOf(productID)
		if i < 0 {
			return ErrLineItemNotFound
		}
		cart.Items[i].Quantity = qty
		return nil
	})
}

// ReplaceAll discards the current lines and stores items instead. Repeated
// products are merged so the cart keeps one line per product.
func (s *CartService) ReplaceAll(ctx context.Context, cartID string, items []CartItemInput) (*models.CartDTO, error) {
	replacement := models.CartItems{}
	index := map[string]int{}
	for _, item := range items {
		productID := strings.TrimSpace(item.Product)
		if productID == "" {
			continue
		}
		qty := clampQuantity(item.Quantity)
		if i, ok := index[productID]; ok {
			replacement[i].Quantity += qty
			continue
		}
		index[productID] = len(replacement)
		replacement = append(replacement, models.CartItem{ProductID: productID, Quantity: qty})
	}

	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.Items = append(models.CartItems{}, replacement...)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, cartID string) (*models.CartDTO, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.Items = models.CartItems{}
		return nil
	})
}

// mutate runs a read-modify-write on one cart. A concurrent write in
// between makes SaveCart fail with ErrStale, and the change is replayed on
// the fresh cart.
func (s *CartService) mutate(ctx context.Context, cartID string, apply func(*models.Cart) error) (*models.CartDTO, error) {
	for attempt := 1; attempt <= maxCartWriteAttempts; attempt++ {
		cart, err := s.carts.FindCart(ctx, cartID)
		if err != nil {
			return nil, notFound(err, ErrCartNotFound)
		}
		if err := apply(cart); err != nil {
			return nil, err
		}

		err = s.carts.SaveCart(ctx, cart)
		if errors.Is(err, store.ErrStale) {
			s.log.WithFields(logrus.Fields{"cart_id": cartID, "attempt": attempt}).Debug("Cart changed concurrently, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save cart: %w", notFound(err, ErrCartNotFound))
		}
		return s.enrich(ctx, cart)
	}
	return nil, fmt.Errorf("failed to save cart %s after %d attempts: %w", cartID, maxCartWriteAttempts, store.ErrStale)
}

// enrich projects every line's product to {id, title, price, category}.
// Lines whose product was deleted keep their reference with a nil product.
func (s *CartService) enrich(ctx context.Context, cart *models.Cart) (*models.CartDTO, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	byID := map[string]*models.ProductSummary{}
	if len(ids) > 0 {
		products, err := s.products.FindProductsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart products: %w", err)
		}
		for i := range products {
			byID[products[i].ID] = models.NewProductSummary(&products[i])
		}
	}

	dto := &models.CartDTO{ID: cart.ID, Products: make([]models.CartLineDTO, 0, len(cart.Items))}
	for _, item := range cart.Items {
		dto.Products = append(dto.Products, models.CartLineDTO{
			ProductID: item.ProductID,
			Product:   byID[item.ProductID],
			Quantity:  item.Quantity,
		})
	}
	return dto, nil
}

func clampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

// CoerceQuantity reads a loosely typed quantity from a decoded JSON body.
// Numbers are truncated, numeric strings are parsed, anything else reads
// as 0 and is later raised to the floor of 1.
func CoerceQuantity(v any) int {
	switch q := v.(type) {
	case float64:
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return 0
		}
		return int(q)
	case int:
		return q
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
