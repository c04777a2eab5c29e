package repository

import (
	"time"

	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindByOwner(owner model.CartOwner) (*model.Cart, error)
	Delete(cartID uint) error
	FindLines(cartID uint) ([]model.CartLine, error)
	DeleteLines(cartID uint) error
	FindStaleAnonymous(cutoff time.Time) ([]model.Cart, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByOwner(owner model.CartOwner) (*model.Cart, error) {
	logger.Debug("Finding cart by owner in database", owner.LogFields())

	var cart model.Cart
	query := r.db
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

// Delete removes a cart together with its lines.
func (r *cartRepository) Delete(cartID uint) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"cart_id": cartID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartLine{}).Error; err != nil {
			logger.Error("Failed to delete cart lines", err, map[string]interface{}{
				"cart_id": cartID,
			})
			return err
		}
		if err := tx.Delete(&model.Cart{}, cartID).Error; err != nil {
			logger.Error("Failed to delete cart", err, map[string]interface{}{
				"cart_id": cartID,
			})
			return err
		}
		return nil
	})
}

func (r *cartRepository) FindLines(cartID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.Where("cart_id = ?", cartID).
		Preload("Product").
		Preload("Variant").
		Preload("Size").
		Order("added_at, id").
		Find(&lines).Error
	if err != nil {
		logger.Error("Failed to find cart lines in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart lines found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(lines),
	})
	return lines, nil
}

func (r *cartRepository) DeleteLines(cartID uint) error {
	logger.Debug("Deleting all cart lines from database", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartLine{}).Error; err != nil {
		logger.Error("Failed to delete cart lines from database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

// FindStaleAnonymous returns session-owned carts created before cutoff with no
// line activity since. Account carts are never returned; they persist
// indefinitely.
func (r *cartRepository) FindStaleAnonymous(cutoff time.Time) ([]model.Cart, error) {
	var carts []model.Cart
	recentlyActive := r.db.Model(&model.CartLine{}).
		Select("cart_id").
		Where("updated_at >= ?", cutoff)

	err := r.db.
		Where("session_token IS NOT NULL").
		Where("created_at < ?", cutoff).
		Where("id NOT IN (?)", recentlyActive).
		Find(&carts).Error
	if err != nil {
		logger.Error("Failed to find stale anonymous carts", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return nil, err
	}
	return carts, nil
}
