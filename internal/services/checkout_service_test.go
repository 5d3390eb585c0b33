package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
)

type CheckoutServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	mailer  *recordingMailer
	service *CheckoutService
	tickets *TicketService
}

func (suite *CheckoutServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.mailer = newRecordingMailer()

	log := newTestLogger()
	suite.tickets = NewTicketService(suite.store)
	suite.service = NewCheckoutService(
		NewPurchaseService(suite.store, suite.store, log),
		suite.tickets,
		NewPaymentService(config.PaymentConfig{}),
		NewNotificationService(suite.mailer, config.FrontendConfig{}, time.Hour, log),
		NewLogPublisher(log),
		log,
	)
}

func (suite *CheckoutServiceTestSuite) TestIssuesTicketForPositiveAmount() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 12.5, 4)
	cartID := seedCart(suite.ctx, suite.store, models.CartItem{ProductID: a, Quantity: 2})

	result, err := suite.service.Checkout(suite.ctx, cartID, "Buyer@Example.com")
	suite.Require().NoError(err)

	suite.Equal(25.0, result.Amount)
	suite.Require().NotNil(result.Ticket)
	suite.Regexp(`^TCK-[A-Z2-9]{4}-[A-Z2-9]{4}-[A-Z2-9]{4}$`, result.Ticket.Code)
	suite.Equal("buyer@example.com", result.Ticket.Purchaser)
	suite.Equal(25.0, result.Ticket.Amount)
	suite.Empty(result.PaymentClientSecret)

	stored, err := suite.tickets.GetByCode(suite.ctx, result.Ticket.Code)
	suite.Require().NoError(err)
	suite.Equal(result.Ticket.ID, stored.ID)

	mine, err := suite.tickets.ListForPurchaser(suite.ctx, "BUYER@example.com")
	suite.Require().NoError(err)
	suite.Len(mine, 1)

	select {
	case mail := <-suite.mailer.sent:
		suite.Equal("buyer@example.com", mail.To)
		suite.Contains(mail.HTML, result.Ticket.Code)
	case <-time.After(2 * time.Second):
		suite.Fail("receipt was not sent")
	}
}

func (suite *CheckoutServiceTestSuite) TestNothingPurchasedIssuesNoTicket() {
	a := seedProduct(suite.ctx, suite.store, "A-1", 12.5, 1)
	cartID := seedCart(suite.ctx, suite.store, models.CartItem{ProductID: a, Quantity: 2})

	_, err := suite.service.Checkout(suite.ctx, cartID, "buyer@example.com")
	suite.ErrorIs(err, ErrNothingPurchased)
	suite.Equal(OutcomeValidation, OutcomeOf(err))

	var nothing *NothingPurchasedError
	suite.Require().True(errors.As(err, &nothing))
	suite.Len(nothing.Settlement.NotPurchasedItems, 1)

	mine, err := suite.tickets.ListForPurchaser(suite.ctx, "buyer@example.com")
	suite.Require().NoError(err)
	suite.Empty(mine)
}

func (suite *CheckoutServiceTestSuite) TestFreeItemsSettleWithoutTicket() {
	free := seedProduct(suite.ctx, suite.store, "FREE-1", 0, 5)
	cartID := seedCart(suite.ctx, suite.store, models.CartItem{ProductID: free, Quantity: 2})

	result, err := suite.service.Checkout(suite.ctx, cartID, "buyer@example.com")
	suite.Require().NoError(err)

	suite.Equal(0.0, result.Amount)
	suite.Require().Len(result.PurchasedItems, 1)
	suite.Equal(2, result.PurchasedItems[0].Quantity)
	suite.Empty(result.NotPurchasedItems)
	suite.Nil(result.Ticket)

	product, err := suite.store.FindProduct(suite.ctx, free)
	suite.Require().NoError(err)
	suite.Equal(3, product.Stock)

	cart, err := suite.store.FindCart(suite.ctx, cartID)
	suite.Require().NoError(err)
	suite.Empty(cart.Items)

	mine, err := suite.tickets.ListForPurchaser(suite.ctx, "buyer@example.com")
	suite.Require().NoError(err)
	suite.Empty(mine)
}

func (suite *CheckoutServiceTestSuite) TestEmptyCart() {
	cartID := seedCart(suite.ctx, suite.store)
	_, err := suite.service.Checkout(suite.ctx, cartID, "buyer@example.com")
	suite.ErrorIs(err, ErrNothingPurchased)
}

func (suite *CheckoutServiceTestSuite) TestTicketValidation() {
	_, err := suite.tickets.Issue(suite.ctx, 0, "buyer@example.com")
	suite.Equal(OutcomeValidation, OutcomeOf(err))

	_, err = suite.tickets.Issue(suite.ctx, 5, " ")
	suite.Equal(OutcomeValidation, OutcomeOf(err))

	_, err = suite.tickets.GetByCode(suite.ctx, "TCK-NOPE")
	suite.ErrorIs(err, ErrTicketNotFound)
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}
