package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundledCatalog(t *testing.T) {
	assert.True(t, Supports("en"))
	assert.True(t, Supports("es"))

	assert.Equal(t, "Cart not found", T("en", "cart.not_found"))
	assert.Equal(t, "Carrito no encontrado", T("es", "cart.not_found"))
	assert.Equal(t, "Invalid request", T("en", KeyValidationInvalid, "request"))
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, "Cart not found", T("fr", "cart.not_found"))
	assert.Equal(t, "missing.key", T("en", "missing.key"))
}

func TestEveryKeyIsTranslated(t *testing.T) {
	keys := []string{
		KeyAuthRequired, KeyAuthForbidden, KeyAuthInvalidToken, KeyAuthInvalidCredentials,
		KeyAuthUserExists, KeyAuthLoginSuccess, KeyAuthLogoutSuccess, KeyAuthRegisterSuccess,
		KeyAuthResetRequested, KeyAuthPasswordReset, KeyAuthPasswordReused, KeyAuthResetInvalid,
		KeyCartNotOwned, KeyProductCreated, KeyProductUpdated, KeyProductDeleted,
		KeyProductCodeExists, KeyProductImageUploaded, KeyCartQuantityRequired,
		KeyCartProductsRequired, KeyCartCleared, KeyPurchaseNothing, KeyPurchaseCompleted,
		KeyValidationInvalid, KeyInvalidID, KeyStoreUnavailable, KeyRateLimited,
	}
	for _, resource := range []string{ResourceUser, ResourceProduct, ResourceCart, ResourceTicket, ResourceCartRow} {
		keys = append(keys, resource+".not_found")
	}

	for _, lang := range []string{"en", "es"} {
		for _, key := range keys {
			_, ok := instance.lookup(lang, key)
			assert.True(t, ok, "%s missing %s", lang, key)
		}
	}
}
