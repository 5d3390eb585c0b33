// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront-labs/storefront-api/internal/i18n"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	cookies     *utils.CookieManager
}

func NewAuthHandler(authService *services.AuthService, cookies *utils.CookieManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// POST /api/sessions/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, i18n.KeyAuthUserExists)
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{
		Status:  utils.StatusSuccess,
		Payload: user,
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRegisterSuccess),
	})
}

// POST /api/sessions/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "")
		return
	}

	h.cookies.SetAccessToken(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, utils.APIResponse{
		Status:  utils.StatusSuccess,
		Payload: result,
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLoginSuccess),
	})
}

// GET /api/sessions/current
func (h *AuthHandler) Current(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	utils.SuccessResponse(c, user)
}

// POST /api/sessions/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := utils.GetClaimsFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "")
		return
	}

	h.cookies.Clear(c)
	utils.MessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLogoutSuccess))
}

// POST /api/sessions/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, "")
		return
	}
	utils.MessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthResetRequested))
}

// POST /api/sessions/reset-password
// The token may come in the body or as the ?token= of the mailed link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, "")
		return
	}
	utils.MessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthPasswordReset))
}
