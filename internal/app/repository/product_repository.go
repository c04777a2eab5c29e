package repository

import (
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindVariantByID(id uint) (*model.ProductVariant, error)
	FindSizeByID(id uint) (*model.Size, error)
	FindAllSizes() ([]model.Size, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Variants").Order("id").Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products in database", err, nil)
		return nil, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindVariantByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *productRepository) FindSizeByID(id uint) (*model.Size, error) {
	var size model.Size
	if err := r.db.First(&size, id).Error; err != nil {
		return nil, err
	}
	return &size, nil
}

func (r *productRepository) FindAllSizes() ([]model.Size, error) {
	var sizes []model.Size
	if err := r.db.Order("sort_order, id").Find(&sizes).Error; err != nil {
		logger.Error("Failed to find sizes in database", err, nil)
		return nil, err
	}
	return sizes, nil
}
