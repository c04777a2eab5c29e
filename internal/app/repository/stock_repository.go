package repository

import (
	"errors"

	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

type StockRepository interface {
	FindBySKU(productID, variantID, sizeID uint) (*model.Stock, error)
	FindByProduct(productID uint) ([]model.Stock, error)
	Upsert(stock *model.Stock) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) FindBySKU(productID, variantID, sizeID uint) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.
		Where("product_id = ? AND variant_id = ? AND size_id = ?", productID, variantID, sizeID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) FindByProduct(productID uint) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.Where("product_id = ?", productID).
		Preload("Variant").
		Preload("Size").
		Order("variant_id, size_id").
		Find(&stocks).Error
	if err != nil {
		logger.Error("Failed to find stock entries by product in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return stocks, nil
}

// Upsert creates or replaces the ledger entry for one SKU+size. Only the
// admin stock surface calls this; the cart core never writes the ledger.
func (r *stockRepository) Upsert(stock *model.Stock) error {
	logger.Debug("Upserting stock entry in database", map[string]interface{}{
		"product_id": stock.ProductID,
		"variant_id": stock.VariantID,
		"size_id":    stock.SizeID,
		"quantity":   stock.Quantity,
	})

	var existing model.Stock
	err := r.db.
		Where("product_id = ? AND variant_id = ? AND size_id = ?",
			stock.ProductID, stock.VariantID, stock.SizeID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := r.db.Create(stock).Error; err != nil {
			logger.Error("Failed to create stock entry in database", err, map[string]interface{}{
				"product_id": stock.ProductID,
				"variant_id": stock.VariantID,
				"size_id":    stock.SizeID,
			})
			return err
		}
		return nil
	}

	existing.Quantity = stock.Quantity
	existing.UnitPrice = stock.UnitPrice
	if err := r.db.Save(&existing).Error; err != nil {
		logger.Error("Failed to update stock entry in database", err, map[string]interface{}{
			"stock_id": existing.ID,
		})
		return err
	}
	*stock = existing
	return nil
}
