package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
)

type CartServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service *CartService
	shirt   string
	mug     string
	cartID  string
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.service = NewCartService(suite.store, suite.store, newTestLogger())

	suite.shirt = seedProduct(suite.ctx, suite.store, "SHIRT-1", 20, 5)
	suite.mug = seedProduct(suite.ctx, suite.store, "MUG-1", 8, 5)

	cart, err := suite.service.CreateCart(suite.ctx)
	suite.Require().NoError(err)
	suite.cartID = cart.ID
}

func (suite *CartServiceTestSuite) TestCreateCartIsEmpty() {
	cart, err := suite.service.GetCart(suite.ctx, suite.cartID)
	suite.Require().NoError(err)
	suite.NotNil(cart.Products)
	suite.Empty(cart.Products)
}

func (suite *CartServiceTestSuite) TestAddMergesRepeatedProduct() {
	_, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.shirt, 2)
	suite.Require().NoError(err)
	_, err = suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.mug, 1)
	suite.Require().NoError(err)
	cart, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.shirt, 3)
	suite.Require().NoError(err)

	suite.Require().Len(cart.Products, 2)
	suite.Equal(suite.shirt, cart.Products[0].ProductID)
	suite.Equal(5, cart.Products[0].Quantity)
	suite.Require().NotNil(cart.Products[0].Product)
	suite.Equal("Product SHIRT-1", cart.Products[0].Product.Title)
	suite.Equal(suite.mug, cart.Products[1].ProductID)
}

func (suite *CartServiceTestSuite) TestQuantityFloor() {
	cart, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.shirt, 0)
	suite.Require().NoError(err)
	suite.Equal(1, cart.Products[0].Quantity)

	cart, err = suite.service.SetQuantity(suite.ctx, suite.cartID, suite.shirt, -4)
	suite.Require().NoError(err)
	suite.Equal(1, cart.Products[0].Quantity)
}

func (suite *CartServiceTestSuite) TestAddUnknownProduct() {
	_, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, "missing", 1)
	suite.ErrorIs(err, ErrProductNotFound)
	suite.Equal(OutcomeNotFound, OutcomeOf(err))
}

func (suite *CartServiceTestSuite) TestUnknownCart() {
	_, err := suite.service.AddOrIncrement(suite.ctx, "missing", suite.shirt, 1)
	suite.ErrorIs(err, ErrCartNotFound)

	_, err = suite.service.GetCart(suite.ctx, "missing")
	suite.ErrorIs(err, ErrCartNotFound)
}

func (suite *CartServiceTestSuite) TestMissingCartReportedBeforeMissingProduct() {
	_, err := suite.service.AddOrIncrement(suite.ctx, "missing", "also-missing", 1)
	suite.ErrorIs(err, ErrCartNotFound)
	suite.NotErrorIs(err, ErrProductNotFound)

	cart, err := suite.service.GetCart(suite.ctx, suite.cartID)
	suite.Require().NoError(err)
	suite.Empty(cart.Products)
}

func (suite *CartServiceTestSuite) TestRemoveAndSetQuantity() {
	_, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.shirt, 1)
	suite.Require().NoError(err)

	_, err = suite.service.SetQuantity(suite.ctx, suite.cartID, suite.mug, 3)
	suite.ErrorIs(err, ErrLineItemNotFound)

	cart, err := suite.service.SetQuantity(suite.ctx, suite.cartID, suite.shirt, 4)
	suite.Require().NoError(err)
	suite.Equal(4, cart.Products[0].Quantity)

	cart, err = suite.service.RemoveItem(suite.ctx, suite.cartID, suite.mug)
	suite.Require().NoError(err)
	suite.Len(cart.Products, 1)

	cart, err = suite.service.RemoveItem(suite.ctx, suite.cartID, suite.shirt)
	suite.Require().NoError(err)
	suite.Empty(cart.Products)
}

func (suite *CartServiceTestSuite) TestReplaceAllMergesAndClears() {
	cart, err := suite.service.ReplaceAll(suite.ctx, suite.cartID, []CartItemInput{
		{Product: suite.mug, Quantity: 2},
		{Product: "", Quantity: 9},
		{Product: suite.shirt, Quantity: 0},
		{Product: suite.mug, Quantity: 1},
	})
	suite.Require().NoError(err)
	suite.Require().Len(cart.Products, 2)
	suite.Equal(suite.mug, cart.Products[0].ProductID)
	suite.Equal(3, cart.Products[0].Quantity)
	suite.Equal(1, cart.Products[1].Quantity)

	cart, err = suite.service.Clear(suite.ctx, suite.cartID)
	suite.Require().NoError(err)
	suite.Empty(cart.Products)
}

func (suite *CartServiceTestSuite) TestDeletedProductStaysReferenced() {
	_, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.mug, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.DeleteProduct(suite.ctx, suite.mug))

	cart, err := suite.service.GetCart(suite.ctx, suite.cartID)
	suite.Require().NoError(err)
	suite.Require().Len(cart.Products, 1)
	suite.Equal(suite.mug, cart.Products[0].ProductID)
	suite.Nil(cart.Products[0].Product)
}

func (suite *CartServiceTestSuite) TestConcurrentAddsAreNotLost() {
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.AddOrIncrement(suite.ctx, suite.cartID, suite.shirt, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}
	cart, err := suite.store.FindCart(suite.ctx, suite.cartID)
	suite.Require().NoError(err)
	suite.Equal(models.CartItems{{ProductID: suite.shirt, Quantity: 4}}, cart.Items)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func TestCoerceQuantity(t *testing.T) {
	assert.Equal(t, 3, CoerceQuantity(float64(3.9)))
	assert.Equal(t, 7, CoerceQuantity(" 7 "))
	assert.Equal(t, 0, CoerceQuantity("many"))
	assert.Equal(t, 0, CoerceQuantity(nil))
	assert.Equal(t, 0, CoerceQuantity(true))
	assert.Equal(t, 1, clampQuantity(CoerceQuantity("x")))
}
