package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
)

type PurchaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service *PurchaseService
}

func (suite *PurchaseServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.service = NewPurchaseService(suite.store, suite.store, newTestLogger())
}

func (suite *PurchaseServiceTestSuite) stock(id string) int {
	p, err := suite.store.FindProduct(suite.ctx, id)
	suite.Require().NoError(err)
	return p.Stock
}

func (suite *PurchaseServiceTestSuite) items(cartID string) models.CartItems {
	cart, err := suite.store.FindCart(suite.ctx, cartID)
	suite.Require().NoError(err)
	return cart.Items
}

func (suite *PurchaseServiceTestSuite) TestInsufficientStockLeavesEverythingUntouched() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 10, 2)
	cartID := seedCart(suite.ctx, suite.store, models.CartItem{ProductID: a, Quantity: 3})

	settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	suite.Zero(settlement.Amount)
	suite.Empty(settlement.PurchasedItems)
	suite.Equal([]models.SettlementItem{{Product: a, Quantity: 3, Reason: models.ReasonInsufficientStock}}, settlement.NotPurchasedItems)
	suite.Equal(models.CartItems{{ProductID: a, Quantity: 3}}, suite.items(cartID))
	suite.Equal(2, suite.stock(a))
}

func (suite *PurchaseServiceTestSuite) TestPartialFulfillment() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 10, 5)
	b := seedProduct(suite.ctx, suite.store, "B-1", 99, 0)
	cartID := seedCart(suite.ctx, suite.store,
		models.CartItem{ProductID: a, Quantity: 2},
		models.CartItem{ProductID: b, Quantity: 1},
	)

	settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	suite.Equal(20.0, settlement.Amount)
	suite.Equal([]models.SettlementItem{{Product: a, Quantity: 2}}, settlement.PurchasedItems)
	suite.Equal([]models.SettlementItem{{Product: b, Quantity: 1, Reason: models.ReasonInsufficientStock}}, settlement.NotPurchasedItems)
	suite.Equal(models.CartItems{{ProductID: b, Quantity: 1}}, suite.items(cartID))
	suite.Equal(3, suite.stock(a))
	suite.Equal(0, suite.stock(b))
}

func (suite *PurchaseServiceTestSuite) TestDeletedProduct() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 4.5, 10)
	gone := seedProduct(suite.ctx, suite.store, "GONE-1", 1, 10)
	cartID := seedCart(suite.ctx, suite.store,
		models.CartItem{ProductID: gone, Quantity: 2},
		models.CartItem{ProductID: a, Quantity: 2},
	)
	suite.Require().NoError(suite.store.DeleteProduct(suite.ctx, gone))

	settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	suite.Equal(9.0, settlement.Amount)
	suite.Equal([]models.SettlementItem{{Product: gone, Quantity: 2, Reason: models.ReasonProductMissing}}, settlement.NotPurchasedItems)
	suite.Equal(models.CartItems{{ProductID: gone, Quantity: 2}}, suite.items(cartID))
}

func (suite *PurchaseServiceTestSuite) TestDecimalTotal() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 0.1, 10)
	b := seedProduct(suite.ctx, suite.store, "B-1", 0.2, 10)
	cartID := seedCart(suite.ctx, suite.store,
		models.CartItem{ProductID: a, Quantity: 3},
		models.CartItem{ProductID: b, Quantity: 1},
	)

	settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)
	suite.Equal(0.5, settlement.Amount)
	suite.Empty(suite.items(cartID))
}

func (suite *PurchaseServiceTestSuite) TestEmptyCartIsIdempotent() {
	cartID := seedCart(suite.ctx, suite.store)

	for i := 0; i < 2; i++ {
		settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
		suite.Require().NoError(err)
		suite.Zero(settlement.Amount)
		suite.NotNil(settlement.PurchasedItems)
		suite.Empty(settlement.PurchasedItems)
		suite.NotNil(settlement.NotPurchasedItems)
		suite.Empty(settlement.NotPurchasedItems)
	}
}

func (suite *PurchaseServiceTestSuite) TestUnknownCart() {
	_, err := suite.service.Purchase(suite.ctx, "missing", "buyer@example.com")
	suite.ErrorIs(err, ErrCartNotFound)
	suite.Equal(OutcomeNotFound, OutcomeOf(err))
}

func (suite *PurchaseServiceTestSuite) TestConservation() {
	ids := []string{
		seedProduct(suite.ctx, suite.store, "P-1", 1, 1),
		seedProduct(suite.ctx, suite.store, "P-2", 2, 0),
		seedProduct(suite.ctx, suite.store, "P-3", 3, 9),
		seedProduct(suite.ctx, suite.store, "P-4", 4, 2),
	}
	var items []models.CartItem
	for i, id := range ids {
		items = append(items, models.CartItem{ProductID: id, Quantity: i + 1})
	}
	cartID := seedCart(suite.ctx, suite.store, items...)

	settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	seen := map[string]int{}
	for _, line := range settlement.PurchasedItems {
		seen[line.Product]++
	}
	for _, line := range settlement.NotPurchasedItems {
		seen[line.Product]++
	}
	suite.Len(seen, len(ids))
	for _, id := range ids {
		suite.Equal(1, seen[id], id)
		suite.GreaterOrEqual(suite.stock(id), 0)
	}
}

func (suite *PurchaseServiceTestSuite) TestConcurrentPurchaseOfLastUnit() {
	c := seedProduct(suite.ctx, suite.store, "C-1", 15, 1)
	carts := []string{
		seedCart(suite.ctx, suite.store, models.CartItem{ProductID: c, Quantity: 1}),
		seedCart(suite.ctx, suite.store, models.CartItem{ProductID: c, Quantity: 1}),
	}

	results := make([]*models.Settlement, len(carts))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, cartID := range carts {
		wg.Add(1)
		go func(i int, cartID string) {
			defer wg.Done()
			<-start
			settlement, err := suite.service.Purchase(suite.ctx, cartID, "buyer@example.com")
			suite.NoError(err)
			results[i] = settlement
		}(i, cartID)
	}
	close(start)
	wg.Wait()

	succeeded, refused := 0, 0
	for _, r := range results {
		suite.Require().NotNil(r)
		if len(r.PurchasedItems) == 1 {
			succeeded++
			suite.Equal(15.0, r.Amount)
		}
		if len(r.NotPurchasedItems) == 1 {
			refused++
			suite.Equal(models.ReasonInsufficientStock, r.NotPurchasedItems[0].Reason)
		}
	}
	suite.Equal(1, succeeded)
	suite.Equal(1, refused)
	suite.Equal(0, suite.stock(c))
}

func (suite *PurchaseServiceTestSuite) TestStoreFailureKeepsRemainingLines() {
	flaky := &flakyStore{Store: suite.store}
	a := seedProduct(suite.ctx, suite.store, "A-1", 10, 5)
	b := seedProduct(suite.ctx, suite.store, "B-1", 10, 5)
	c := seedProduct(suite.ctx, suite.store, "C-1", 10, 5)
	flaky.failOn = b
	cartID := seedCart(suite.ctx, suite.store,
		models.CartItem{ProductID: a, Quantity: 1},
		models.CartItem{ProductID: b, Quantity: 1},
		models.CartItem{ProductID: c, Quantity: 1},
	)

	service := NewPurchaseService(flaky, flaky, newTestLogger())
	settlement, err := service.Purchase(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	suite.Equal(10.0, settlement.Amount)
	suite.Equal([]models.SettlementItem{
		{Product: b, Quantity: 1, Reason: ReasonStoreUnavailable},
		{Product: c, Quantity: 1, Reason: ReasonStoreUnavailable},
	}, settlement.NotPurchasedItems)
	suite.Equal(4, suite.stock(a))
	suite.Equal(5, suite.stock(c))
	suite.Equal(models.CartItems{{ProductID: b, Quantity: 1}, {ProductID: c, Quantity: 1}}, suite.items(cartID))
}

func (suite *PurchaseServiceTestSuite) TestResidueKeepsConcurrentAdditions() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 10, 5)
	b := seedProduct(suite.ctx, suite.store, "B-1", 10, 5)
	cartID := seedCart(suite.ctx, suite.store, models.CartItem{ProductID: a, Quantity: 2})

	cart, err := suite.store.FindCart(suite.ctx, cartID)
	suite.Require().NoError(err)

	// Another writer adds to the cart after the purchase read it.
	fresh, err := suite.store.FindCart(suite.ctx, cartID)
	suite.Require().NoError(err)
	fresh.Items = append(fresh.Items, models.CartItem{ProductID: b, Quantity: 1})
	fresh.Items[0].Quantity = 3
	suite.Require().NoError(suite.store.SaveCart(suite.ctx, fresh))

	settlement := &models.Settlement{PurchasedItems: []models.SettlementItem{{Product: a, Quantity: 2}}}
	suite.Require().NoError(suite.service.saveResidue(suite.ctx, cart, settlement))

	suite.Equal(models.CartItems{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 1}}, suite.items(cartID))
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}
