// internal/handlers/cart.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront-labs/storefront-api/internal/i18n"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

type CartHandler struct {
	cartService     *services.CartService
	checkoutService *services.CheckoutService
}

func NewCartHandler(cartService *services.CartService, checkoutService *services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

// quantityBody keeps quantity loosely typed; numbers and numeric strings
// are both accepted.
type quantityBody struct {
	Quantity any `json:"quantity"`
}

type replaceCartBody struct {
	Products []map[string]any `json:"products"`
}

// POST /api/carts
func (h *CartHandler) CreateCart(c *gin.Context) {
	cart, err := h.cartService.CreateCart(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.CreatedResponse(c, cart)
}

// GET /api/carts/:cid
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), c.Param("cid"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, cart)
}

// POST /api/carts/:cid/product/:pid
func (h *CartHandler) AddProduct(c *gin.Context) {
	qty := 1
	var body quantityBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}
	if body.Quantity != nil {
		qty = services.CoerceQuantity(body.Quantity)
	}

	cart, err := h.cartService.AddOrIncrement(c.Request.Context(), c.Param("cid"), c.Param("pid"), qty)
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, cart)
}

// DELETE /api/carts/:cid/products/:pid
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	cart, err := h.cartService.RemoveItem(c.Request.Context(), c.Param("cid"), c.Param("pid"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, cart)
}

// PUT /api/carts/:cid/products/:pid
func (h *CartHandler) SetQuantity(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var body quantityBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}
	if body.Quantity == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartQuantityRequired), nil)
		return
	}

	cart, err := h.cartService.SetQuantity(c.Request.Context(), c.Param("cid"), c.Param("pid"), services.CoerceQuantity(body.Quantity))
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, cart)
}

// PUT /api/carts/:cid
func (h *CartHandler) ReplaceProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var body replaceCartBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartProductsRequired), nil)
		return
	}
	if body.Products == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartProductsRequired), nil)
		return
	}

	items := make([]services.CartItemInput, 0, len(body.Products))
	for _, entry := range body.Products {
		product, ok := entry["product"].(string)
		if !ok {
			continue
		}
		items = append(items, services.CartItemInput{
			Product:  product,
			Quantity: services.CoerceQuantity(entry["quantity"]),
		})
	}

	cart, err := h.cartService.ReplaceAll(c.Request.Context(), c.Param("cid"), items)
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, cart)
}

// DELETE /api/carts/:cid
func (h *CartHandler) ClearCart(c *gin.Context) {
	cart, err := h.cartService.Clear(c.Request.Context(), c.Param("cid"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, utils.APIResponse{
		Status:  utils.StatusSuccess,
		Payload: cart,
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyCartCleared),
	})
}

// POST /api/carts/:cid/purchase
func (h *CartHandler) Purchase(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	claims, exists := utils.GetClaimsFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), c.Param("cid"), claims.Email)
	if err != nil {
		var nothing *services.NothingPurchasedError
		if errors.As(err, &nothing) {
			utils.ErrorResponse(c, http.StatusBadRequest, "NOTHING_PURCHASED", i18n.T(lang, i18n.KeyPurchaseNothing), nothing.Settlement)
			return
		}
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Status:  utils.StatusSuccess,
		Payload: result,
		Message: i18n.T(lang, i18n.KeyPurchaseCompleted),
	})
}
