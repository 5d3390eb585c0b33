// internal/services/purchase_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

// ReasonStoreUnavailable marks lines that were not attempted because the
// store failed part way through a purchase.
const ReasonStoreUnavailable = "store unavailable"

// PurchaseService reconciles a cart against live stock. Lines are handled
// in cart order: each one is either purchased, with its stock debited
// atomically, or left in the cart with a reason.
type PurchaseService struct {
	carts    store.CartStore
	products store.ProductStore
	locks    *keyedMutex
	log      *logrus.Logger
}

func NewPurchaseService(carts store.CartStore, products store.ProductStore, log *logrus.Logger) *PurchaseService {
	return &PurchaseService{
		carts:    carts,
		products: products,
		locks:    newKeyedMutex(),
		log:      log,
	}
}

// Purchase settles the cart. It returns ErrCartNotFound when the cart does
// not exist. Purchasing an empty cart is a no-op with a zero amount.
func (s *PurchaseService) Purchase(ctx context.Context, cartID, purchaser string) (*models.Settlement, error) {
	unlock := s.locks.Lock(cartID)
	defer unlock()

	cart, err := s.carts.FindCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, ErrCartNotFound)
	}

	settlement := &models.Settlement{
		PurchasedItems:    []models.SettlementItem{},
		NotPurchasedItems: []models.SettlementItem{},
	}
	if len(cart.Items) == 0 {
		return settlement, nil
	}

	logger := s.log.WithFields(logrus.Fields{"cart_id": cartID, "purchaser": purchaser})
	total := decimal.Zero
	var storeErr error

	for _, item := range cart.Items {
		qty := clampQuantity(item.Quantity)
		line := models.SettlementItem{Product: item.ProductID, Quantity: qty}

		if storeErr != nil {
			line.Reason = ReasonStoreUnavailable
			settlement.NotPurchasedItems = append(settlement.NotPurchasedItems, line)
			continue
		}

		product, err := s.reconcileLine(ctx, item.ProductID, qty)
		switch {
		case err == nil:
			total = total.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(qty))))
			settlement.PurchasedItems = append(settlement.PurchasedItems, line)
		case errors.Is(err, store.ErrNotFound):
			line.Reason = models.ReasonProductMissing
			settlement.NotPurchasedItems = append(settlement.NotPurchasedItems, line)
		case errors.Is(err, store.ErrInsufficientStock):
			line.Reason = models.ReasonInsufficientStock
			settlement.NotPurchasedItems = append(settlement.NotPurchasedItems, line)
		default:
			// Debits already applied stay applied; the rest of the cart is
			// kept for a later attempt.
			logger.WithError(err).WithField("product_id", item.ProductID).Error("Store failed during purchase")
			storeErr = err
			line.Reason = ReasonStoreUnavailable
			settlement.NotPurchasedItems = append(settlement.NotPurchasedItems, line)
		}
	}

	settlement.Amount = total.InexactFloat64()

	if err := s.saveResidue(ctx, cart, settlement); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"amount":        settlement.Amount,
		"purchased":     len(settlement.PurchasedItems),
		"not_purchased": len(settlement.NotPurchasedItems),
	}).Info("Cart reconciled")

	return settlement, nil
}

// reconcileLine checks and debits stock for one line. The stock check is
// repeated atomically by DecrementStock, so a concurrent purchase between
// the read and the debit cannot oversell.
func (s *PurchaseService) reconcileLine(ctx context.Context, productID string, qty int) (*models.Product, error) {
	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < qty {
		return nil, store.ErrInsufficientStock
	}
	return s.products.DecrementStock(ctx, productID, qty)
}

// saveResidue leaves exactly the not purchased lines in the cart. When the
// cart was modified while the purchase ran, the purchased quantities are
// subtracted from the fresh cart instead, so concurrent additions survive.
func (s *PurchaseService) saveResidue(ctx context.Context, cart *models.Cart, settlement *models.Settlement) error {
	residue := models.CartItems{}
	for _, line := range settlement.NotPurchasedItems {
		residue = append(residue, models.CartItem{ProductID: line.Product, Quantity: line.Quantity})
	}
	cart.Items = residue

	purchased := map[string]int{}
	for _, line := range settlement.PurchasedItems {
		purchased[line.Product] += line.Quantity
	}

	for attempt := 1; attempt <= maxCartWriteAttempts; attempt++ {
		err := s.carts.SaveCart(ctx, cart)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrStale) {
			return fmt.Errorf("failed to save cart residue: %w", notFound(err, ErrCartNotFound))
		}

		fresh, err := s.carts.FindCart(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to reload cart: %w", notFound(err, ErrCartNotFound))
		}
		fresh.Items = subtractPurchased(fresh.Items, purchased)
		cart = fresh
	}
	return fmt.Errorf("failed to save cart residue after %d attempts: %w", maxCartWriteAttempts, store.ErrStale)
}

func subtractPurchased(items models.CartItems, purchased map[string]int) models.CartItems {
	out := models.CartItems{}
	for _, item := range items {
		item.Quantity -= purchased[item.ProductID]
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}
