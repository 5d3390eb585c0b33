// internal/utils/pagination.go
package utils

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPaginationParams coerces page to at least 1 and limit into [1, 100].
// A zero limit means "not provided" and falls back to the default.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PaginationParams{Page: page, Limit: limit}
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages never reports fewer than one page, even for an empty result.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 1
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		return 1
	}
	return pages
}

// PageLink clones the request's query string and overwrites page.
func PageLink(u *url.URL, page int) string {
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	link := url.URL{Path: u.Path, RawQuery: query.Encode()}
	return link.String()
}

func SetPaginationHeaders(c *gin.Context, total int64, page, limit, totalPages int) {
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.Header("X-Page", strconv.Itoa(page))
	c.Header("X-Per-Page", strconv.Itoa(limit))
	c.Header("X-Total-Pages", strconv.Itoa(totalPages))
}
