// internal/services/product_query.go
package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

// ProductQuery is the untyped listing request. Every field is optional; nil
// range bounds are absent, while a bound of 0 is a real bound.
type ProductQuery struct {
	Page     int
	Limit    int
	Sort     string
	Query    string
	PriceMin *float64
	PriceMax *float64
	StockMin *float64
	StockMax *float64
}

// ProductPage is the paginated listing envelope.
type ProductPage struct {
	Status      string              `json:"status"`
	Payload     []models.ProductDTO `json:"payload"`
	TotalDocs   int64               `json:"totalDocs"`
	Limit       int                 `json:"limit"`
	Page        int                 `json:"page"`
	TotalPages  int                 `json:"totalPages"`
	HasPrevPage bool                `json:"hasPrevPage"`
	HasNextPage bool                `json:"hasNextPage"`
	PrevPage    *int                `json:"prevPage"`
	NextPage    *int                `json:"nextPage"`
	PrevLink    *string             `json:"prevLink"`
	NextLink    *string             `json:"nextLink"`
}

var textSearchFields = []string{"title", "description"}

type ProductQueryService struct {
	products store.ProductStore
}

func NewProductQueryService(products store.ProductStore) *ProductQueryService {
	return &ProductQueryService{products: products}
}

// Query runs the listing: the page window and the total count are fetched
// concurrently against the same filter.
func (s *ProductQueryService) Query(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	filter := ParseFilter(q)
	sort := ParseSort(q.Sort)
	params := utils.NewPaginationParams(q.Page, q.Limit)

	var (
		items []models.Product
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.products.FindProducts(gctx, filter, sort, params.Offset(), params.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.products.CountProducts(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	totalPages := utils.TotalPages(total, params.Limit)
	page := &ProductPage{
		Status:      utils.StatusSuccess,
		Payload:     make([]models.ProductDTO, 0, len(items)),
		TotalDocs:   total,
		Limit:       params.Limit,
		Page:        params.Page,
		TotalPages:  totalPages,
		HasPrevPage: params.Page > 1,
		HasNextPage: params.Page < totalPages,
	}
	for i := range items {
		page.Payload = append(page.Payload, models.NewProductDTO(&items[i]))
	}
	if page.HasPrevPage {
		prev := params.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := params.Page + 1
		page.NextPage = &next
	}
	return page, nil
}

// ParseFilter turns the query string and range bounds into filter clauses.
//
// A query containing ":" is a comma separated list of key:value pairs:
// status is true only for the literal "true", every other key is an exact
// match on that field. Without ":" the query is a case-insensitive
// substring search over title and description.
func ParseFilter(q ProductQuery) store.Filter {
	filter := store.Filter{}

	if query := strings.TrimSpace(q.Query); query != "" {
		if strings.Contains(query, ":") {
			for _, pair := range strings.Split(query, ",") {
				key, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
				key = strings.TrimSpace(key)
				if !ok || key == "" {
					continue
				}
				value = strings.TrimSpace(value)
				if key == "status" {
					filter = append(filter, store.Equals{Field: key, Value: value == "true"})
					continue
				}
				filter = append(filter, store.Equals{Field: key, Value: value})
			}
		} else {
			filter = append(filter, store.TextSearch{Fields: textSearchFields, Term: query})
		}
	}

	if q.PriceMin != nil || q.PriceMax != nil {
		filter = append(filter, store.Range{Field: "price", Min: q.PriceMin, Max: q.PriceMax})
	}
	if q.StockMin != nil || q.StockMax != nil {
		filter = append(filter, store.Range{Field: "stock", Min: q.StockMin, Max: q.StockMax})
	}

	return filter
}

// ParseSort accepts "field:asc", "field:desc", "-field" or a bare field.
// The field name is not validated here.
func ParseSort(raw string) store.Sort {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return store.Sort{}
	case strings.Contains(raw, ":"):
		field, dir, _ := strings.Cut(raw, ":")
		return store.Sort{Field: strings.TrimSpace(field), Desc: strings.TrimSpace(dir) == "desc"}
	case strings.HasPrefix(raw, "-"):
		return store.Sort{Field: raw[1:], Desc: true}
	default:
		return store.Sort{Field: raw}
	}
}
