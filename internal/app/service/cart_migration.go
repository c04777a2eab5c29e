package service

import (
	"errors"
	"fmt"

	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

// MigrateSessionToAccount merges a pre-authentication session cart into the
// account's cart after login or registration, then retires the session cart.
// Quantities are summed when both carts hold the same SKU+size - never
// overwritten, never duplicated. No stock re-validation happens during the
// merge: migration is a best-effort union of intent, and the next
// checkout-time stock check settles whether it still fits. Migration must not
// drop items just because stock tightened in between.
func (s *cartService) MigrateSessionToAccount(sessionToken string, accountID uint) (*CartView, error) {
	logger.Info("Migrating session cart to account", map[string]interface{}{
		"account_id": accountID,
	})
	return s.migrate(model.SessionOwner(sessionToken), model.AccountOwner(accountID), sessionToken != "")
}

// MigrateAccountToSession is the mirror operation, invoked on logout so the
// basket follows the shopper back into anonymity.
func (s *cartService) MigrateAccountToSession(accountID uint, sessionToken string) (*CartView, error) {
	logger.Info("Migrating account cart to session", map[string]interface{}{
		"account_id": accountID,
	})
	if sessionToken == "" {
		return nil, ErrIdentityRequired
	}
	return s.migrate(model.AccountOwner(accountID), model.SessionOwner(sessionToken), true)
}

// migrate moves every line of the source owner's cart into the destination
// owner's cart inside one transaction, then deletes the source cart. Any
// failure rolls the whole merge back; a partial merge is never visible.
func (s *cartService) migrate(source, dest model.CartOwner, haveSource bool) (*CartView, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during cart migration, rolling back", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	destCart, err := s.resolveCart(tx, dest)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if !haveSource {
		// No source identity supplied: nothing to migrate.
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return s.buildView(destCart.ID)
	}

	srcCart, err := s.findCart(tx, source)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Source cart never existed: trivial success.
			if err := tx.Commit().Error; err != nil {
				return nil, err
			}
			return s.buildView(destCart.ID)
		}
		tx.Rollback()
		return nil, err
	}

	if srcCart.ID == destCart.ID {
		// Already the same cart: trivial success.
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return s.buildView(destCart.ID)
	}

	var srcLines []model.CartLine
	if err := tx.Where("cart_id = ?", srcCart.ID).Find(&srcLines).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to read source cart lines", err, map[string]interface{}{
			"cart_id": srcCart.ID,
		})
		return nil, err
	}

	for _, srcLine := range srcLines {
		var destLine model.CartLine
		err := tx.
			Where("cart_id = ? AND product_id = ? AND variant_id = ? AND size_id = ?",
				destCart.ID, srcLine.ProductID, srcLine.VariantID, srcLine.SizeID).
			First(&destLine).Error
		switch {
		case err == nil:
			// Both carts hold this SKU+size: sum the quantities.
			if err := tx.Model(&destLine).
				Update("quantity", destLine.Quantity+srcLine.Quantity).Error; err != nil {
				tx.Rollback()
				logger.Error("Failed to merge cart line", err, map[string]interface{}{
					"cart_line_id": destLine.ID,
				})
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			moved := model.CartLine{
				CartID:    destCart.ID,
				ProductID: srcLine.ProductID,
				VariantID: srcLine.VariantID,
				SizeID:    srcLine.SizeID,
				Quantity:  srcLine.Quantity,
			}
			if err := tx.Create(&moved).Error; err != nil {
				tx.Rollback()
				logger.Error("Failed to move cart line", err, map[string]interface{}{
					"cart_id": destCart.ID,
				})
				return nil, err
			}
		default:
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Where("cart_id = ?", srcCart.ID).Delete(&model.CartLine{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete source cart lines", err, map[string]interface{}{
			"cart_id": srcCart.ID,
		})
		return nil, err
	}
	if err := tx.Delete(&model.Cart{}, srcCart.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to retire source cart", err, map[string]interface{}{
			"cart_id": srcCart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart migration", err, nil)
		return nil, err
	}

	logger.Info("Cart migration completed", map[string]interface{}{
		"source_cart_id": srcCart.ID,
		"dest_cart_id":   destCart.ID,
		"lines_moved":    len(srcLines),
	})
	return s.buildView(destCart.ID)
}

// findCart looks an owner's cart up without creating one.
func (s *cartService) findCart(tx *gorm.DB, owner model.CartOwner) (*model.Cart, error) {
	var cart model.Cart
	query := tx
	if accountID, ok := owner.AccountID(); ok {
		query = query.Where("account_id = ?", accountID)
	} else if token, ok := owner.SessionToken(); ok {
		query = query.Where("session_token = ?", token)
	} else {
		return nil, gorm.ErrRecordNotFound
	}
	if err := query.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}
