// internal/handlers/product.go
package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront-labs/storefront-api/internal/i18n"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

type ProductHandler struct {
	queryService   *services.ProductQueryService
	productService *services.ProductService
}

func NewProductHandler(queryService *services.ProductQueryService, productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		queryService:   queryService,
		productService: productService,
	}
}

// GET /api/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	q := services.ProductQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Sort:     listingSort(c.Query("sort")),
		Query:    c.Query("query"),
		PriceMin: queryFloat(c, "priceMin"),
		PriceMax: queryFloat(c, "priceMax"),
		StockMin: queryFloat(c, "stockMin"),
		StockMax: queryFloat(c, "stockMax"),
	}

	page, err := h.queryService.Query(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "")
		return
	}

	if page.PrevPage != nil {
		link := utils.PageLink(c.Request.URL, *page.PrevPage)
		page.PrevLink = &link
	}
	if page.NextPage != nil {
		link := utils.PageLink(c.Request.URL, *page.NextPage)
		page.NextLink = &link
	}

	utils.SetPaginationHeaders(c, page.TotalDocs, page.Page, page.Limit, page.TotalPages)
	c.JSON(http.StatusOK, page)
}

// GET /api/products/:pid
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, i18n.KeyProductCodeExists)
		return
	}
	utils.CreatedResponse(c, product)
}

// PUT /api/products/:pid
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("pid"), &req)
	if err != nil {
		respondError(c, err, i18n.KeyProductCodeExists)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /api/products/:pid
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("pid")); err != nil {
		respondError(c, err, "")
		return
	}
	utils.MessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted))
}

// POST /api/products/:pid/thumbnails
func (h *ProductHandler) UploadThumbnail(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}
	defer file.Close()

	product, err := h.productService.AddThumbnail(c.Request.Context(), c.Param("pid"), file, header)
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.CreatedResponse(c, product)
}

// listingSort keeps the shorthand asc/desc as a price sort.
func listingSort(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return "price:asc"
	case "desc":
		return "price:desc"
	default:
		return raw
	}
}

// queryInt truncates numeric input; anything unparsable reads as 0, which
// the pagination defaults replace.
func queryInt(c *gin.Context, key string) int {
	f, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}
