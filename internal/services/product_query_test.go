package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
)

func float(v float64) *float64 { return &v }

func TestParseFilter(t *testing.T) {
	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Empty(t, ParseFilter(ProductQuery{}))
	})

	t.Run("free text searches title and description", func(t *testing.T) {
		f := ParseFilter(ProductQuery{Query: "  shirt "})
		require.Len(t, f, 1)
		assert.Equal(t, store.TextSearch{Fields: []string{"title", "description"}, Term: "shirt"}, f[0])
	})

	t.Run("key value pairs", func(t *testing.T) {
		f := ParseFilter(ProductQuery{Query: "category:home, status:yes,broken,code:a:b"})
		assert.Equal(t, store.Filter{
			store.Equals{Field: "category", Value: "home"},
			store.Equals{Field: "status", Value: false},
			store.Equals{Field: "code", Value: "a:b"},
		}, f)
	})

	t.Run("status true", func(t *testing.T) {
		f := ParseFilter(ProductQuery{Query: "status:true"})
		assert.Equal(t, store.Filter{store.Equals{Field: "status", Value: true}}, f)
	})

	t.Run("zero bound is kept", func(t *testing.T) {
		f := ParseFilter(ProductQuery{PriceMin: float(0), StockMax: float(3)})
		require.Len(t, f, 2)
		assert.Equal(t, store.Range{Field: "price", Min: float(0)}, f[0])
		assert.Equal(t, store.Range{Field: "stock", Max: float(3)}, f[1])
	})
}

func TestParseSort(t *testing.T) {
	assert.True(t, ParseSort("").IsZero())
	assert.Equal(t, store.Sort{Field: "price", Desc: true}, ParseSort("price:desc"))
	assert.Equal(t, store.Sort{Field: "price"}, ParseSort("price:asc"))
	assert.Equal(t, store.Sort{Field: "stock", Desc: true}, ParseSort("-stock"))
	assert.Equal(t, store.Sort{Field: "title"}, ParseSort("title"))
}

type ProductQueryTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service *ProductQueryService
}

func (suite *ProductQueryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.service = NewProductQueryService(suite.store)

	for i, price := range []float64{5, 15, 25, 35, 45, 0} {
		seedProduct(suite.ctx, suite.store, string(rune('A'+i))+"-1", price, i)
	}
}

func (suite *ProductQueryTestSuite) TestPagination() {
	page, err := suite.service.Query(suite.ctx, ProductQuery{Page: 2, Limit: 4})
	suite.Require().NoError(err)

	suite.Equal("success", page.Status)
	suite.EqualValues(6, page.TotalDocs)
	suite.Equal(2, page.TotalPages)
	suite.Len(page.Payload, 2)
	suite.True(page.HasPrevPage)
	suite.False(page.HasNextPage)
	suite.Require().NotNil(page.PrevPage)
	suite.Equal(1, *page.PrevPage)
	suite.Nil(page.NextPage)
}

func (suite *ProductQueryTestSuite) TestDefaultsAndEmptyResult() {
	page, err := suite.service.Query(suite.ctx, ProductQuery{Query: "nothing matches this"})
	suite.Require().NoError(err)

	suite.Equal(10, page.Limit)
	suite.Equal(1, page.Page)
	suite.Equal(1, page.TotalPages)
	suite.NotNil(page.Payload)
	suite.Empty(page.Payload)
	suite.False(page.HasNextPage)
}

func (suite *ProductQueryTestSuite) TestRangeAndSort() {
	page, err := suite.service.Query(suite.ctx, ProductQuery{PriceMin: float(0), PriceMax: float(25), Sort: "price:desc"})
	suite.Require().NoError(err)

	suite.Require().Len(page.Payload, 4)
	suite.Equal(25.0, page.Payload[0].Price)
	suite.Equal(0.0, page.Payload[3].Price)
}

func TestProductQueryTestSuite(t *testing.T) {
	suite.Run(t, new(ProductQueryTestSuite))
}
