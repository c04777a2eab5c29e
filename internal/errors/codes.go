package errors

// Error code constants returned in the "code" field of error envelopes.
// Format: CATEGORY_SPECIFIC_DETAIL. Frontends key user-facing messages off
// these codes.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Cart (CART_) ====================
	CartIdentityRequired = "CART_IDENTITY_REQUIRED"
	CartLineNotFound     = "CART_LINE_NOT_FOUND"

	// ==================== Stock ledger (STOCK_) ====================
	StockItemNotFound = "STOCK_ITEM_NOT_FOUND"
	StockInsufficient = "STOCK_INSUFFICIENT"

	// ==================== Catalog (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
