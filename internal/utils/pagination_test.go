package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, 500, 1, 100},
		{2, -4, 2, 1},
		{5, 25, 5, 25},
	}
	for _, tc := range cases {
		p := NewPaginationParams(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, p.Page)
		assert.Equal(t, tc.wantLimit, p.Limit)
	}

	assert.Equal(t, 20, NewPaginationParams(3, 10).Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
}

func TestPageLink(t *testing.T) {
	u, _ := url.Parse("/api/products?limit=5&page=2&query=category%3Abooks")
	link := PageLink(u, 3)

	parsed, err := url.Parse(link)
	assert.NoError(t, err)
	assert.Equal(t, "/api/products", parsed.Path)
	assert.Equal(t, "3", parsed.Query().Get("page"))
	assert.Equal(t, "5", parsed.Query().Get("limit"))
	assert.Equal(t, "category:books", parsed.Query().Get("query"))
}
