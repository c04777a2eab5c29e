package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/db"
	"github.com/vostra/vostra-backend/internal/middleware"
	"gorm.io/gorm"
)

type cartControllerFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	product model.Product
	variant model.ProductVariant
	size    model.Size
}

func setupCartControllerTest(t *testing.T) *cartControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	stockRepo := repository.NewStockRepository(testDB)
	cartService := service.NewCartService(testDB, cartRepo, stockRepo)
	cartController := NewCartController(cartService)

	f := &cartControllerFixture{db: testDB}

	f.product = model.Product{Name: "Crewneck Sweatshirt", Category: model.CategoryTops}
	require.NoError(t, testDB.Create(&f.product).Error)
	f.variant = model.ProductVariant{ProductID: f.product.ID, Color: "heather"}
	require.NoError(t, testDB.Create(&f.variant).Error)
	f.size = model.Size{Label: "L", SortOrder: 4}
	require.NoError(t, testDB.Create(&f.size).Error)
	require.NoError(t, testDB.Create(&model.Stock{
		ProductID: f.product.ID,
		VariantID: f.variant.ID,
		SizeID:    f.size.ID,
		Quantity:  5,
		UnitPrice: decimal.RequireFromString("42.00"),
	}).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Account identity is normally injected by the auth middleware; tests
	// simulate it with the X-Test-Account-ID header.
	asAuthenticated := func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			if v := c.GetHeader("X-Test-Account-ID"); v != "" {
				var id uint
				fmt.Sscanf(v, "%d", &id)
				c.Set(middleware.AccountIDKey, id)
			}
			handler(c)
		}
	}

	router.GET("/cart", asAuthenticated(cartController.GetCart))
	router.GET("/cart/summary", asAuthenticated(cartController.GetSummary))
	router.POST("/cart/items", asAuthenticated(cartController.AddItem))
	router.PUT("/cart/items", asAuthenticated(cartController.UpdateQuantity))
	router.DELETE("/cart/items", asAuthenticated(cartController.RemoveItem))
	router.DELETE("/cart", asAuthenticated(cartController.ClearCart))
	router.POST("/cart/migrate", asAuthenticated(cartController.Migrate))

	f.router = router
	return f
}

func (f *cartControllerFixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sessionHeaders(token string) map[string]string {
	return map[string]string{middleware.SessionTokenHeader: token}
}

// assertAmount compares a JSON-decoded decimal field by numeric value, not by
// string rendering.
func assertAmount(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %T", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)),
		"want %s, got %s", want, s)
}

func TestCartController_GetCart_Empty(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodGet, "/cart", nil, sessionHeaders("guest-c1"))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["item_count"])
}

func TestCartController_GetCart_NoIdentity(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodGet, "/cart", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "CART_IDENTITY_REQUIRED", resp["code"])
}

func TestCartController_AddItem(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   2,
	}, sessionHeaders("guest-c2"))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	cart := resp["cart"].(map[string]interface{})
	items := cart["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(2), item["quantity"])
	assert.Equal(t, "Crewneck Sweatshirt", item["product_name"])
	assertAmount(t, "84.00", cart["total"])
}

func TestCartController_AddItem_AccountIdentityWins(t *testing.T) {
	f := setupCartControllerTest(t)

	// Both identities on the request: the line lands in the account cart
	headers := sessionHeaders("guest-c3")
	headers["X-Test-Account-ID"] = "7"
	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   1,
	}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/cart", nil, map[string]string{"X-Test-Account-ID": "7"})
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(1), cart["item_count"])

	w = f.do(t, http.MethodGet, "/cart", nil, sessionHeaders("guest-c3"))
	resp = decodeBody(t, w)
	cart = resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["item_count"])
}

func TestCartController_AddItem_Validation(t *testing.T) {
	f := setupCartControllerTest(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing product_id",
			body: gin.H{"variant_id": f.variant.ID, "size_id": f.size.ID, "quantity": 1},
		},
		{
			name: "zero quantity",
			body: gin.H{"product_id": f.product.ID, "variant_id": f.variant.ID, "size_id": f.size.ID, "quantity": 0},
		},
		{
			name: "negative quantity",
			body: gin.H{"product_id": f.product.ID, "variant_id": f.variant.ID, "size_id": f.size.ID, "quantity": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/cart/items", tt.body, sessionHeaders("guest-c4"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBody(t, w)
			assert.Equal(t, "VALIDATION_INVALID_INPUT", resp["code"])
		})
	}
}

func TestCartController_AddItem_UnknownCombination(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    999,
		"quantity":   1,
	}, sessionHeaders("guest-c5"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "STOCK_ITEM_NOT_FOUND", resp["code"])
}

func TestCartController_AddItem_InsufficientStock(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   6,
	}, sessionHeaders("guest-c6"))

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "STOCK_INSUFFICIENT", resp["code"])
	assert.Equal(t, float64(5), resp["available"])
}

func TestCartController_UpdateQuantity_ZeroRemoves(t *testing.T) {
	f := setupCartControllerTest(t)
	headers := sessionHeaders("guest-c7")

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   2,
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   0,
	}, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["item_count"])
}

func TestCartController_RemoveItem(t *testing.T) {
	f := setupCartControllerTest(t)
	headers := sessionHeaders("guest-c8")

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   1,
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/cart/items?product_id=%d&variant_id=%d&size_id=%d",
		f.product.ID, f.variant.ID, f.size.ID)
	w = f.do(t, http.MethodDelete, path, nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["item_count"])
}

func TestCartController_RemoveItem_NotInCart(t *testing.T) {
	f := setupCartControllerTest(t)

	path := fmt.Sprintf("/cart/items?product_id=%d&variant_id=%d&size_id=%d",
		f.product.ID, f.variant.ID, f.size.ID)
	w := f.do(t, http.MethodDelete, path, nil, sessionHeaders("guest-c9"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "CART_LINE_NOT_FOUND", resp["code"])
}

func TestCartController_ClearCart(t *testing.T) {
	f := setupCartControllerTest(t)
	headers := sessionHeaders("guest-c10")

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   3,
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/cart", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/cart", nil, headers)
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["item_count"])
}

func TestCartController_GetSummary(t *testing.T) {
	f := setupCartControllerTest(t)
	headers := sessionHeaders("guest-c11")

	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   2,
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/cart/summary", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	summary := resp["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["item_count"])
	assertAmount(t, "84.00", summary["total"])
}

func TestCartController_Migrate(t *testing.T) {
	f := setupCartControllerTest(t)

	// Guest builds a cart before signing in
	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   2,
	}, sessionHeaders("guest-c12"))
	require.Equal(t, http.StatusOK, w.Code)

	headers := sessionHeaders("guest-c12")
	headers["X-Test-Account-ID"] = "21"
	w = f.do(t, http.MethodPost, "/cart/migrate", gin.H{}, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(2), cart["item_count"])

	// The merged cart now belongs to the account alone
	w = f.do(t, http.MethodGet, "/cart", nil, map[string]string{"X-Test-Account-ID": "21"})
	resp = decodeBody(t, w)
	cart = resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(2), cart["item_count"])
}

func TestCartController_Migrate_RequiresAccount(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodPost, "/cart/migrate", gin.H{}, sessionHeaders("guest-c13"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartController_Migrate_LogoutDirection(t *testing.T) {
	f := setupCartControllerTest(t)

	// Account cart built while signed in
	w := f.do(t, http.MethodPost, "/cart/items", gin.H{
		"product_id": f.product.ID,
		"variant_id": f.variant.ID,
		"size_id":    f.size.ID,
		"quantity":   1,
	}, map[string]string{"X-Test-Account-ID": "22"})
	require.Equal(t, http.StatusOK, w.Code)

	headers := sessionHeaders("guest-c14")
	headers["X-Test-Account-ID"] = "22"
	w = f.do(t, http.MethodPost, "/cart/migrate", gin.H{"direction": "logout"}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// The basket followed the shopper back to the session
	w = f.do(t, http.MethodGet, "/cart", nil, sessionHeaders("guest-c14"))
	resp := decodeBody(t, w)
	cart := resp["cart"].(map[string]interface{})
	assert.Equal(t, float64(1), cart["item_count"])
}

func TestCartController_Migrate_LogoutWithoutToken(t *testing.T) {
	f := setupCartControllerTest(t)

	w := f.do(t, http.MethodPost, "/cart/migrate", gin.H{"direction": "logout"},
		map[string]string{"X-Test-Account-ID": "23"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "CART_IDENTITY_REQUIRED", resp["code"])
}
