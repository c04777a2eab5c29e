package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/db"
	"gorm.io/gorm"
)

func setupStockControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, model.Product, model.ProductVariant, model.Size) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	stockRepo := repository.NewStockRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	stockService := service.NewStockService(stockRepo, productRepo)
	stockController := NewStockController(stockService)

	product := model.Product{Name: "Denim Jacket", Category: model.CategoryOuterwear}
	require.NoError(t, testDB.Create(&product).Error)
	variant := model.ProductVariant{ProductID: product.ID, Color: "indigo"}
	require.NoError(t, testDB.Create(&variant).Error)
	size := model.Size{Label: "M", SortOrder: 3}
	require.NoError(t, testDB.Create(&size).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/admin/stock", stockController.UpsertStock)

	return router, testDB, product, variant, size
}

func putStock(t *testing.T, router *gin.Engine, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPut, "/admin/stock", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStockController_UpsertStock(t *testing.T) {
	router, testDB, product, variant, size := setupStockControllerTest(t)

	w := putStock(t, router, gin.H{
		"product_id": product.ID,
		"variant_id": variant.ID,
		"size_id":    size.ID,
		"quantity":   8,
		"unit_price": "79.00",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.Stock{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStockController_UpsertStock_ZeroQuantity(t *testing.T) {
	router, _, product, variant, size := setupStockControllerTest(t)

	w := putStock(t, router, gin.H{
		"product_id": product.ID,
		"variant_id": variant.ID,
		"size_id":    size.ID,
		"quantity":   0,
		"unit_price": "79.00",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	stock := resp["stock"].(map[string]interface{})
	assert.Equal(t, float64(0), stock["quantity"])
}

func TestStockController_UpsertStock_Validation(t *testing.T) {
	router, _, product, variant, size := setupStockControllerTest(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing quantity",
			body: gin.H{"product_id": product.ID, "variant_id": variant.ID, "size_id": size.ID, "unit_price": "10.00"},
		},
		{
			name: "negative quantity",
			body: gin.H{"product_id": product.ID, "variant_id": variant.ID, "size_id": size.ID, "quantity": -1, "unit_price": "10.00"},
		},
		{
			name: "negative price",
			body: gin.H{"product_id": product.ID, "variant_id": variant.ID, "size_id": size.ID, "quantity": 1, "unit_price": "-10.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := putStock(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestStockController_UpsertStock_UnknownProduct(t *testing.T) {
	router, _, _, variant, size := setupStockControllerTest(t)

	w := putStock(t, router, gin.H{
		"product_id": 999,
		"variant_id": variant.ID,
		"size_id":    size.ID,
		"quantity":   1,
		"unit_price": "10.00",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PRODUCT_NOT_FOUND")
}
