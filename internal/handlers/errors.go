// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront-labs/storefront-api/internal/i18n"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

// respondError maps a service error onto the response envelope. conflict
// is the translation key used for uniqueness conflicts, if any.
func respondError(c *gin.Context, err error, conflict string) {
	lang := utils.GetLangFromContext(c)

	switch services.OutcomeOf(err) {
	case services.OutcomeNotFound:
		utils.NotFoundResponse(c, resourceOf(err))
	case services.OutcomeValidation:
		switch {
		case errors.Is(err, services.ErrPasswordReused):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAuthPasswordReused), nil)
		case errors.Is(err, services.ErrInvalidResetToken):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAuthResetInvalid), nil)
		default:
			if details := utils.GetValidationErrors(err); len(details) > 0 {
				utils.ValidationErrorResponse(c, details)
				return
			}
			utils.BadRequestResponse(c, err.Error(), nil)
		}
	case services.OutcomeConflict:
		message := err.Error()
		if conflict != "" {
			message = i18n.T(lang, conflict)
		}
		utils.ConflictResponse(c, message)
	case services.OutcomeUnauthorized:
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case services.OutcomeUnavailable:
		_ = c.Error(err)
		utils.ServiceUnavailableResponse(c)
	default:
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

func resourceOf(err error) string {
	switch {
	case errors.Is(err, services.ErrCartNotFound):
		return i18n.ResourceCart
	case errors.Is(err, services.ErrProductNotFound):
		return i18n.ResourceProduct
	case errors.Is(err, services.ErrTicketNotFound):
		return i18n.ResourceTicket
	case errors.Is(err, services.ErrLineItemNotFound):
		return i18n.ResourceCartRow
	default:
		return i18n.ResourceUser
	}
}

func bindError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	utils.ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
}
