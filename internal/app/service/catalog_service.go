package service

import (
	"errors"

	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// ProductDetail is the catalog read view: display data plus the per-SKU+size
// ledger state (availability and current price).
type ProductDetail struct {
	Product model.Product `json:"product"`
	Offers  []model.Stock `json:"offers"`
}

type CatalogService interface {
	ListProducts() ([]model.Product, error)
	GetProductByID(id uint) (*ProductDetail, error)
	ListSizes() ([]model.Size, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

func NewCatalogService(productRepo repository.ProductRepository, stockRepo repository.StockRepository) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		stockRepo:   stockRepo,
	}
}

func (s *catalogService) ListProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}
	return products, nil
}

func (s *catalogService) GetProductByID(id uint) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	offers, err := s.stockRepo.FindByProduct(id)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product: *product,
		Offers:  offers,
	}, nil
}

func (s *catalogService) ListSizes() ([]model.Size, error) {
	return s.productRepo.FindAllSizes()
}
