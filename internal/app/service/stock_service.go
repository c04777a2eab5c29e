package service

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidVariant = errors.New("variant does not belong to product")
	ErrSizeNotFound   = errors.New("size not found")
)

// StockService is the admin-facing writer of the stock ledger. The cart core
// never goes through here; it only reads the ledger.
type StockService interface {
	UpsertStock(productID, variantID, sizeID uint, quantity int, unitPrice decimal.Decimal) (*model.Stock, error)
}

type stockService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

func NewStockService(stockRepo repository.StockRepository, productRepo repository.ProductRepository) StockService {
	return &stockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

func (s *stockService) UpsertStock(productID, variantID, sizeID uint, quantity int, unitPrice decimal.Decimal) (*model.Stock, error) {
	logger.Info("Upserting stock entry", map[string]interface{}{
		"product_id": productID,
		"variant_id": variantID,
		"size_id":    sizeID,
		"quantity":   quantity,
		"unit_price": unitPrice.String(),
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVariant
		}
		return nil, err
	}
	if variant.ProductID != productID {
		logger.Warn("Variant does not belong to product", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
		})
		return nil, ErrInvalidVariant
	}

	if _, err := s.productRepo.FindSizeByID(sizeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSizeNotFound
		}
		return nil, err
	}

	stock := &model.Stock{
		ProductID: productID,
		VariantID: variantID,
		SizeID:    sizeID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := s.stockRepo.Upsert(stock); err != nil {
		return nil, err
	}

	logger.Info("Stock entry upserted", map[string]interface{}{
		"stock_id": stock.ID,
	})
	return stock, nil
}
