package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/errors"
	"github.com/vostra/vostra-backend/internal/middleware"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

// ListProducts returns the catalog with variants.
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.catalogService.ListProducts()
	if err != nil {
		log.Error("Failed to list products", err, nil)
		errors.InternalError(c, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product with its sellable combinations.
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
		})
		errors.BadRequest(c, errors.ValidationInvalidID, "invalid product ID")
		return
	}

	detail, err := ctrl.catalogService.GetProductByID(uint(id))
	if err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": detail.Product,
		"offers":  detail.Offers,
	})
}

// ListSizes returns the size chart in display order.
// GET /api/v1/sizes
func (ctrl *ProductController) ListSizes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sizes, err := ctrl.catalogService.ListSizes()
	if err != nil {
		log.Error("Failed to list sizes", err, nil)
		errors.InternalError(c, "failed to list sizes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sizes":   sizes,
	})
}
