package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/errors"
	"github.com/vostra/vostra-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	VariantID uint `json:"variant_id" binding:"required"`
	SizeID    uint `json:"size_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateQuantityRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	VariantID uint `json:"variant_id" binding:"required"`
	SizeID    uint `json:"size_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID uint `form:"product_id" json:"product_id" binding:"required"`
	VariantID uint `form:"variant_id" json:"variant_id" binding:"required"`
	SizeID    uint `form:"size_id" json:"size_id" binding:"required"`
}

type MigrateRequest struct {
	Direction string `json:"direction" binding:"omitempty,oneof=login logout"`
}

// ownerFromContext assembles the cart owner from whatever identity the request
// carries. A valid account token always outranks a session token.
func ownerFromContext(c *gin.Context) (model.CartOwner, bool) {
	var accountID *uint
	if id, ok := middleware.GetAccountID(c); ok {
		accountID = &id
	}
	return model.ResolveOwner(accountID, middleware.GetSessionToken(c))
}

// GetCart returns the caller's cart with live prices and availability.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Cart request without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	cart, err := ctrl.cartService.GetCart(owner)
	if err != nil {
		log.Error("Failed to fetch cart", err, owner.LogFields())
		errors.InternalError(c, "failed to fetch cart")
		return
	}

	log.Info("Cart fetched", map[string]interface{}{
		"cart_id":    cart.ID,
		"item_count": cart.ItemCount,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    cart,
	})
}

// GetSummary returns the line count and totals without the full line listing.
// GET /api/v1/cart/summary
func (ctrl *CartController) GetSummary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Cart summary request without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	summary, err := ctrl.cartService.GetSummary(owner)
	if err != nil {
		log.Error("Failed to fetch cart summary", err, owner.LogFields())
		errors.InternalError(c, "failed to fetch cart summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// AddItem adds a quantity of one product/variant/size to the cart, merging
// into an existing line for the same combination.
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Add to cart without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request data: "+err.Error())
		return
	}

	cart, err := ctrl.cartService.AddItem(owner, req.ProductID, req.VariantID, req.SizeID, req.Quantity)
	if err != nil {
		ctrl.respondMutationError(c, err, req.ProductID, req.VariantID, req.SizeID)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"cart_id":    cart.ID,
		"product_id": req.ProductID,
		"variant_id": req.VariantID,
		"size_id":    req.SizeID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    cart,
	})
}

// UpdateQuantity sets a line's quantity to an absolute value. Zero or a
// negative value removes the line.
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Cart update without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request data: "+err.Error())
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(owner, req.ProductID, req.VariantID, req.SizeID, req.Quantity)
	if err != nil {
		ctrl.respondMutationError(c, err, req.ProductID, req.VariantID, req.SizeID)
		return
	}

	log.Info("Cart line updated", map[string]interface{}{
		"cart_id":    cart.ID,
		"product_id": req.ProductID,
		"variant_id": req.VariantID,
		"size_id":    req.SizeID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    cart,
	})
}

// RemoveItem deletes one line. The combination is read from query parameters.
// DELETE /api/v1/cart/items
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Cart removal without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	var req RemoveItemRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		log.Warn("Invalid cart removal request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request data: "+err.Error())
		return
	}

	cart, err := ctrl.cartService.RemoveItem(owner, req.ProductID, req.VariantID, req.SizeID)
	if err != nil {
		ctrl.respondMutationError(c, err, req.ProductID, req.VariantID, req.SizeID)
		return
	}

	log.Info("Cart line removed", map[string]interface{}{
		"cart_id":    cart.ID,
		"product_id": req.ProductID,
		"variant_id": req.VariantID,
		"size_id":    req.SizeID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    cart,
	})
}

// ClearCart removes every line. Clearing an already empty cart succeeds.
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := ownerFromContext(c)
	if !ok {
		log.Warn("Cart clear without identity", nil)
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
		return
	}

	if err := ctrl.cartService.ClearCart(owner); err != nil {
		log.Error("Failed to clear cart", err, owner.LogFields())
		errors.InternalError(c, "failed to clear cart")
		return
	}

	log.Info("Cart cleared", owner.LogFields())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "cart cleared",
	})
}

// Migrate moves cart contents between the caller's session cart and account
// cart. Direction "login" (the default) folds the session cart into the
// account cart after sign-in; "logout" hands the account cart back to the
// session before the account token is discarded. Lines for the same
// combination are summed, capped later by the usual stock checks at mutation
// or checkout time.
// POST /api/v1/cart/migrate
func (ctrl *CartController) Migrate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		log.Warn("Cart migration without account", nil)
		errors.Unauthorized(c, "account authentication required for migration")
		return
	}

	sessionToken := middleware.GetSessionToken(c)

	var req MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		log.Warn("Invalid migration request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request data: "+err.Error())
		return
	}

	var (
		cart *service.CartView
		err  error
	)
	switch req.Direction {
	case "logout":
		cart, err = ctrl.cartService.MigrateAccountToSession(accountID, sessionToken)
	default:
		cart, err = ctrl.cartService.MigrateSessionToAccount(sessionToken, accountID)
	}
	if err != nil {
		if stderrors.Is(err, service.ErrIdentityRequired) {
			log.Warn("Migration missing session token", map[string]interface{}{
				"account_id": accountID,
				"direction":  req.Direction,
			})
			errors.BadRequest(c, errors.CartIdentityRequired, "a session token is required for this migration")
			return
		}
		log.Error("Cart migration failed", err, map[string]interface{}{
			"account_id": accountID,
			"direction":  req.Direction,
		})
		errors.InternalError(c, "failed to migrate cart")
		return
	}

	log.Info("Cart migrated", map[string]interface{}{
		"account_id": accountID,
		"direction":  req.Direction,
		"cart_id":    cart.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cart":    cart,
	})
}

// respondMutationError maps the cart service's sentinel errors onto the
// standard envelope.
func (ctrl *CartController) respondMutationError(c *gin.Context, err error, productID, variantID, sizeID uint) {
	log := middleware.GetLoggerFromContext(c)

	var insufficientErr *service.InsufficientStockError
	switch {
	case stderrors.Is(err, service.ErrIdentityRequired):
		errors.BadRequest(c, errors.CartIdentityRequired, "an account token or session token is required")
	case stderrors.Is(err, service.ErrItemNotFound):
		log.Warn("Item not found in stock ledger", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
		})
		errors.NotFound(c, errors.StockItemNotFound, "item is not sold in this combination")
	case stderrors.Is(err, service.ErrItemNotInCart):
		log.Warn("Item not in cart", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
		})
		errors.NotFound(c, errors.CartLineNotFound, "item is not in the cart")
	case stderrors.As(err, &insufficientErr):
		log.Warn("Insufficient stock for cart mutation", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
			"available":  insufficientErr.Available,
		})
		errors.RespondInsufficientStock(c, insufficientErr.Available)
	default:
		log.Error("Cart mutation failed", err, map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
		})
		errors.InternalError(c, "failed to update cart")
	}
}
