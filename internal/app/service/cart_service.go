package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/internal/db"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrIdentityRequired = errors.New("cart identity required")
	ErrItemNotFound     = errors.New("item not found in stock ledger")
	ErrItemNotInCart    = errors.New("item not in cart")
)

// InsufficientStockError reports a rejected mutation together with the
// quantity that is actually available, so callers can offer "add the
// remaining N instead".
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d available", e.Available)
}

// Discounter is the hook for the external promotion engine. A nil Discounter
// means no discount applies.
type Discounter interface {
	// Discount returns the amount to subtract from the cart total.
	Discount(view *CartView) decimal.Decimal
}

// CartLineView is one cart line joined with live catalog display data and the
// current stock ledger state. Prices are never stored on the line itself; a
// price change or stock depletion shows up on the very next fetch.
type CartLineView struct {
	ProductID   uint            `json:"product_id"`
	VariantID   uint            `json:"variant_id"`
	SizeID      uint            `json:"size_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	SizeLabel   string          `json:"size_label"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	Available   int             `json:"available"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type CartView struct {
	ID        uint           `json:"id"`
	Items     []CartLineView `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type CartSummary struct {
	ItemCount          int             `json:"item_count"`
	Total              decimal.Decimal `json:"total"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
}

type CartService interface {
	GetCart(owner model.CartOwner) (*CartView, error)
	GetSummary(owner model.CartOwner) (*CartSummary, error)
	AddItem(owner model.CartOwner, productID, variantID, sizeID uint, quantity int) (*CartView, error)
	UpdateQuantity(owner model.CartOwner, productID, variantID, sizeID uint, quantity int) (*CartView, error)
	RemoveItem(owner model.CartOwner, productID, variantID, sizeID uint) (*CartView, error)
	ClearCart(owner model.CartOwner) error
	MigrateSessionToAccount(sessionToken string, accountID uint) (*CartView, error)
	MigrateAccountToSession(accountID uint, sessionToken string) (*CartView, error)
}

type cartService struct {
	db         *gorm.DB
	cartRepo   repository.CartRepository
	stockRepo  repository.StockRepository
	discounter Discounter
}

func NewCartService(
	database *gorm.DB,
	cartRepo repository.CartRepository,
	stockRepo repository.StockRepository,
	discounter ...Discounter,
) CartService {
	var d Discounter
	if len(discounter) > 0 {
		d = discounter[0]
	}
	return &cartService{
		db:         database,
		cartRepo:   cartRepo,
		stockRepo:  stockRepo,
		discounter: d,
	}
}

// resolveCart is the identity resolver: it maps an owner to its cart id,
// creating the cart lazily on first use. The account id wins when a request
// carries both identities (CartOwner already encodes that precedence).
// Idempotent: the unique owner indexes plus the unique-violation re-fetch
// guarantee repeated calls land on the same cart row.
func (s *cartService) resolveCart(tx *gorm.DB, owner model.CartOwner) (*model.Cart, error) {
	if owner.IsZero() {
		return nil, ErrIdentityRequired
	}

	var cart model.Cart
	query := tx
	if accountID, ok := owner.AccountID(); ok {
		query = query.Where("account_id = ?", accountID)
	} else if token, ok := owner.SessionToken(); ok {
		query = query.Where("session_token = ?", token)
	}

	err := query.First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if accountID, ok := owner.AccountID(); ok {
		id := accountID
		cart = model.Cart{AccountID: &id}
	} else if token, ok := owner.SessionToken(); ok {
		t := token
		cart = model.Cart{SessionToken: &t}
	}

	if err := tx.Create(&cart).Error; err != nil {
		if db.IsUniqueViolation(err) {
			// Lost a create race against a concurrent request for the same
			// owner; their row is the cart.
			var existing model.Cart
			if ferr := query.First(&existing).Error; ferr != nil {
				return nil, ferr
			}
			return &existing, nil
		}
		logger.Error("Failed to create cart", err, owner.LogFields())
		return nil, err
	}

	logger.Info("Cart created", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return &cart, nil
}

func (s *cartService) GetCart(owner model.CartOwner) (*CartView, error) {
	logger.Debug("Fetching cart", owner.LogFields())

	cart, err := s.resolveCart(s.db, owner)
	if err != nil {
		return nil, err
	}
	return s.buildView(cart.ID)
}

func (s *cartService) GetSummary(owner model.CartOwner) (*CartSummary, error) {
	view, err := s.GetCart(owner)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{
		ItemCount:          view.ItemCount,
		Total:              view.Total,
		TotalAfterDiscount: view.Total,
	}
	if s.discounter != nil {
		discounted := view.Total.Sub(s.discounter.Discount(view))
		if discounted.IsNegative() {
			discounted = decimal.Zero
		}
		summary.TotalAfterDiscount = discounted
	}
	return summary, nil
}

// AddItem adds quantity of one SKU+size to the owner's cart, merging into an
// existing line. The stock read, the line read and the line write share one
// transaction; the row lock on the stock entry serializes concurrent
// mutations of the same SKU+size across carts, so the committed quantity
// never exceeds the availability read inside the same transaction. Stock is
// not reserved by carting - reservation happens at order placement.
func (s *cartService) AddItem(owner model.CartOwner, productID, variantID, sizeID uint, quantity int) (*CartView, error) {
	logger.Info("Adding item to cart", mergeFields(owner.LogFields(), map[string]interface{}{
		"product_id": productID,
		"variant_id": variantID,
		"size_id":    sizeID,
		"quantity":   quantity,
	}))

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic while adding to cart, rolling back", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	cart, err := s.resolveCart(tx, owner)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var stock model.Stock
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND variant_id = ? AND size_id = ?", productID, variantID, sizeID).
		First(&stock).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: no stock ledger entry", map[string]interface{}{
				"product_id": productID,
				"variant_id": variantID,
				"size_id":    sizeID,
			})
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to read stock ledger", err, nil)
		return nil, err
	}

	var line model.CartLine
	existingQty := 0
	lineExists := true
	if err := tx.
		Where("cart_id = ? AND product_id = ? AND variant_id = ? AND size_id = ?",
			cart.ID, productID, variantID, sizeID).
		First(&line).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return nil, err
		}
		lineExists = false
	} else {
		existingQty = line.Quantity
	}

	newQuantity := existingQty + quantity
	if newQuantity > stock.Quantity {
		tx.Rollback()
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
			"requested":  newQuantity,
			"available":  stock.Quantity,
		})
		return nil, &InsufficientStockError{Available: stock.Quantity}
	}

	if lineExists {
		if err := tx.Model(&line).Update("quantity", newQuantity).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update cart line", err, map[string]interface{}{
				"cart_line_id": line.ID,
			})
			return nil, err
		}
	} else {
		line = model.CartLine{
			CartID:    cart.ID,
			ProductID: productID,
			VariantID: variantID,
			SizeID:    sizeID,
			Quantity:  newQuantity,
		}
		// The stock row lock also serializes same-cart adds for this
		// SKU+size, so the unique line index cannot be violated here.
		if err := tx.Create(&line).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create cart line", err, map[string]interface{}{
				"cart_id": cart.ID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart addition", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	logger.Info("Cart line added", map[string]interface{}{
		"cart_id":      cart.ID,
		"cart_line_id": line.ID,
		"quantity":     newQuantity,
	})
	return s.buildView(cart.ID)
}

// UpdateQuantity replaces a line's quantity outright, re-validating the
// requested absolute quantity against current availability. Zero or negative
// quantity is a removal.
func (s *cartService) UpdateQuantity(owner model.CartOwner, productID, variantID, sizeID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(owner, productID, variantID, sizeID)
	}

	logger.Info("Updating cart line quantity", mergeFields(owner.LogFields(), map[string]interface{}{
		"product_id": productID,
		"variant_id": variantID,
		"size_id":    sizeID,
		"quantity":   quantity,
	}))

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic while updating cart, rolling back", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	cart, err := s.resolveCart(tx, owner)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var line model.CartLine
	if err := tx.
		Where("cart_id = ? AND product_id = ? AND variant_id = ? AND size_id = ?",
			cart.ID, productID, variantID, sizeID).
		First(&line).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotInCart
		}
		return nil, err
	}

	var stock model.Stock
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND variant_id = ? AND size_id = ?", productID, variantID, sizeID).
		First(&stock).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if quantity > stock.Quantity {
		tx.Rollback()
		logger.Warn("Cannot update cart line: insufficient stock", map[string]interface{}{
			"cart_id":   cart.ID,
			"requested": quantity,
			"available": stock.Quantity,
		})
		return nil, &InsufficientStockError{Available: stock.Quantity}
	}

	if err := tx.Model(&line).Update("quantity", quantity).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update cart line", err, map[string]interface{}{
			"cart_line_id": line.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Cart line updated", map[string]interface{}{
		"cart_id":      cart.ID,
		"cart_line_id": line.ID,
		"quantity":     quantity,
	})
	return s.buildView(cart.ID)
}

// RemoveItem deletes one line. Removing a SKU+size that is not in the cart is
// reported as ErrItemNotInCart rather than silently accepted, so callers can
// tell "already removed" from "removed now".
func (s *cartService) RemoveItem(owner model.CartOwner, productID, variantID, sizeID uint) (*CartView, error) {
	logger.Info("Removing cart line", mergeFields(owner.LogFields(), map[string]interface{}{
		"product_id": productID,
		"variant_id": variantID,
		"size_id":    sizeID,
	}))

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic while removing from cart, rolling back", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	cart, err := s.resolveCart(tx, owner)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	result := tx.
		Where("cart_id = ? AND product_id = ? AND variant_id = ? AND size_id = ?",
			cart.ID, productID, variantID, sizeID).
		Delete(&model.CartLine{})
	if result.Error != nil {
		tx.Rollback()
		logger.Error("Failed to delete cart line", result.Error, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		logger.Warn("Cart line not found for removal", map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
			"variant_id": variantID,
			"size_id":    sizeID,
		})
		return nil, ErrItemNotInCart
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Cart line removed", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return s.buildView(cart.ID)
}

// ClearCart deletes every line. Clearing an empty (or not-yet-created) cart
// is a no-op success.
func (s *cartService) ClearCart(owner model.CartOwner) error {
	logger.Info("Clearing cart", owner.LogFields())

	cart, err := s.resolveCart(s.db, owner)
	if err != nil {
		return err
	}

	if err := s.cartRepo.DeleteLines(cart.ID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

// buildView joins cart lines with live display data and the current ledger
// state. A line whose ledger entry has disappeared is listed with zero
// availability instead of being hidden, so depletion is visible before
// checkout.
func (s *cartService) buildView(cartID uint) (*CartView, error) {
	lines, err := s.cartRepo.FindLines(cartID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:    cartID,
		Items: make([]CartLineView, 0, len(lines)),
		Total: decimal.Zero,
	}

	for _, line := range lines {
		item := CartLineView{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			SizeID:      line.SizeID,
			ProductName: line.Product.Name,
			Color:       line.Variant.Color,
			SizeLabel:   line.Size.Label,
			ImageURL:    line.Variant.ImageURL,
			Quantity:    line.Quantity,
			UnitPrice:   decimal.Zero,
			LineTotal:   decimal.Zero,
		}
		if item.ImageURL == "" {
			item.ImageURL = line.Product.ImageURL
		}

		stock, err := s.stockRepo.FindBySKU(line.ProductID, line.VariantID, line.SizeID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			// Ledger entry gone: keep the line visible with available=0.
		} else {
			item.Available = stock.Quantity
			item.UnitPrice = stock.UnitPrice
			item.LineTotal = stock.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		}

		view.Items = append(view.Items, item)
		view.ItemCount += line.Quantity
		view.Total = view.Total.Add(item.LineTotal)
	}

	return view, nil
}

func mergeFields(a, b map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
