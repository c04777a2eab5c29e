package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/errors"
	"github.com/vostra/vostra-backend/internal/middleware"
)

type StockController struct {
	stockService service.StockService
}

func NewStockController(stockService service.StockService) *StockController {
	return &StockController{
		stockService: stockService,
	}
}

type UpsertStockRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	VariantID uint            `json:"variant_id" binding:"required"`
	SizeID    uint            `json:"size_id" binding:"required"`
	Quantity  *int            `json:"quantity" binding:"required,gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpsertStock creates or replaces one stock ledger entry. Setting quantity to
// zero keeps the entry listed as sold out rather than deleting it.
// PUT /api/v1/admin/stock
func (ctrl *StockController) UpsertStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid stock upsert request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "invalid request data: "+err.Error())
		return
	}
	if req.UnitPrice.IsNegative() {
		errors.BadRequest(c, errors.ValidationInvalidInput, "unit price must not be negative")
		return
	}

	stock, err := ctrl.stockService.UpsertStock(req.ProductID, req.VariantID, req.SizeID, *req.Quantity, req.UnitPrice)
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "product not found")
		case stderrors.Is(err, service.ErrInvalidVariant):
			errors.BadRequest(c, errors.ValidationInvalidInput, "variant does not belong to product")
		case stderrors.Is(err, service.ErrSizeNotFound):
			errors.BadRequest(c, errors.ValidationInvalidInput, "size not found")
		default:
			log.Error("Failed to upsert stock entry", err, map[string]interface{}{
				"product_id": req.ProductID,
				"variant_id": req.VariantID,
				"size_id":    req.SizeID,
			})
			errors.InternalError(c, "failed to upsert stock entry")
		}
		return
	}

	log.Info("Stock entry upserted", map[string]interface{}{
		"stock_id": stock.ID,
		"quantity": stock.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stock":   stock,
	})
}
