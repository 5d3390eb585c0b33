// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthForbidden          = "auth.forbidden"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthResetRequested     = "auth.reset_requested"
	KeyAuthPasswordReset      = "auth.password_reset"
	KeyAuthPasswordReused     = "auth.password_reused"
	KeyAuthResetInvalid       = "auth.reset_invalid"
	KeyCartNotOwned           = "auth.cart_not_owned"

	// Resources, used as "<resource>.not_found"
	ResourceUser    = "user"
	ResourceProduct = "product"
	ResourceCart    = "cart"
	ResourceTicket  = "ticket"
	ResourceCartRow = "cart_item"

	// Products
	KeyProductCreated       = "product.created"
	KeyProductUpdated       = "product.updated"
	KeyProductDeleted       = "product.deleted"
	KeyProductCodeExists    = "product.code_exists"
	KeyProductImageUploaded = "product.image_uploaded"

	// Carts
	KeyCartQuantityRequired = "cart.quantity_required"
	KeyCartProductsRequired = "cart.products_required"
	KeyCartCleared          = "cart.cleared"
	KeyPurchaseNothing      = "cart.purchase_nothing"
	KeyPurchaseCompleted    = "cart.purchase_completed"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidID         = "validation.invalid_id"

	// System
	KeyStoreUnavailable = "system.store_unavailable"
	KeyRateLimited      = "system.rate_limited"
)
