package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vostra/vostra-backend/internal/app/model"
)

// addSKU creates a second sellable combination next to the fixture's default
// one and returns its ids.
func (f *cartTestFixture) addSKU(t *testing.T, color, sizeLabel string, quantity int, price string) (uint, uint, uint) {
	t.Helper()

	variant := model.ProductVariant{ProductID: f.product.ID, Color: color}
	require.NoError(t, f.db.Create(&variant).Error)

	size := model.Size{Label: sizeLabel, SortOrder: 5}
	require.NoError(t, f.db.Create(&size).Error)

	stock := model.Stock{
		ProductID: f.product.ID,
		VariantID: variant.ID,
		SizeID:    size.ID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, f.db.Create(&stock).Error)

	return f.product.ID, variant.ID, size.ID
}

func TestCartService_MigrateSessionToAccount_MergesAdditively(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	pB, vB, sB := f.addSKU(t, "ecru", "L", 10, "35.00")

	session := model.SessionOwner("guest-token-m1")
	account := model.AccountOwner(11)

	// Account cart: {A:1}
	_, err := f.service.AddItem(account, f.product.ID, f.variant.ID, f.size.ID, 1)
	require.NoError(t, err)

	// Session cart: {A:1, B:2}
	_, err = f.service.AddItem(session, f.product.ID, f.variant.ID, f.size.ID, 1)
	require.NoError(t, err)
	_, err = f.service.AddItem(session, pB, vB, sB, 2)
	require.NoError(t, err)

	view, err := f.service.MigrateSessionToAccount("guest-token-m1", 11)
	require.NoError(t, err)

	// Merged: {A:2, B:2}
	require.Len(t, view.Items, 2)
	quantities := map[uint]int{}
	for _, item := range view.Items {
		quantities[item.VariantID] = item.Quantity
	}
	assert.Equal(t, 2, quantities[f.variant.ID])
	assert.Equal(t, 2, quantities[vB])

	// The session cart is gone
	var count int64
	f.db.Model(&model.Cart{}).Where("session_token = ?", "guest-token-m1").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCartService_MigrateSessionToAccount_NoSessionCart(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	account := model.AccountOwner(12)

	_, err := f.service.AddItem(account, f.product.ID, f.variant.ID, f.size.ID, 2)
	require.NoError(t, err)

	// Token that never had a cart: account cart is untouched
	view, err := f.service.MigrateSessionToAccount("never-seen-token", 12)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestCartService_MigrateSessionToAccount_EmptyToken(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	account := model.AccountOwner(13)

	_, err := f.service.AddItem(account, f.product.ID, f.variant.ID, f.size.ID, 1)
	require.NoError(t, err)

	// Login without a prior guest session: trivially the account cart
	view, err := f.service.MigrateSessionToAccount("", 13)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
}

func TestCartService_MigrateSessionToAccount_CreatesAccountCart(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	session := model.SessionOwner("guest-token-m2")

	_, err := f.service.AddItem(session, f.product.ID, f.variant.ID, f.size.ID, 3)
	require.NoError(t, err)

	// First contact with this account: its cart is created by the migration
	view, err := f.service.MigrateSessionToAccount("guest-token-m2", 14)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	accountView, err := f.service.GetCart(model.AccountOwner(14))
	require.NoError(t, err)
	assert.Equal(t, view.ID, accountView.ID)
}

func TestCartService_MigrateSessionToAccount_Idempotent(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	session := model.SessionOwner("guest-token-m3")

	_, err := f.service.AddItem(session, f.product.ID, f.variant.ID, f.size.ID, 2)
	require.NoError(t, err)

	first, err := f.service.MigrateSessionToAccount("guest-token-m3", 15)
	require.NoError(t, err)

	// Replaying the migration finds no source cart and changes nothing
	second, err := f.service.MigrateSessionToAccount("guest-token-m3", 15)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 2, second.Items[0].Quantity)
}

func TestCartService_MigrateSessionToAccount_IgnoresStockTightening(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 5, "20.00")

	session := model.SessionOwner("guest-token-m4")
	account := model.AccountOwner(16)

	_, err := f.service.AddItem(account, f.product.ID, f.variant.ID, f.size.ID, 3)
	require.NoError(t, err)
	_, err = f.service.AddItem(session, f.product.ID, f.variant.ID, f.size.ID, 2)
	require.NoError(t, err)

	// Stock shrank below the combined quantity; the merge still sums
	f.setStock(t, 1, "20.00")

	view, err := f.service.MigrateSessionToAccount("guest-token-m4", 16)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 1, view.Items[0].Available)
}

func TestCartService_MigrateAccountToSession(t *testing.T) {
	f := setupCartServiceTest(t)
	f.setStock(t, 10, "20.00")
	pB, vB, sB := f.addSKU(t, "forest", "S", 10, "28.00")

	session := model.SessionOwner("guest-token-m5")
	account := model.AccountOwner(17)

	_, err := f.service.AddItem(account, f.product.ID, f.variant.ID, f.size.ID, 2)
	require.NoError(t, err)
	_, err = f.service.AddItem(session, pB, vB, sB, 1)
	require.NoError(t, err)

	view, err := f.service.MigrateAccountToSession(17, "guest-token-m5")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	// The account cart is retired
	var count int64
	f.db.Model(&model.Cart{}).Where("account_id = ?", 17).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCartService_MigrateAccountToSession_RequiresToken(t *testing.T) {
	f := setupCartServiceTest(t)

	_, err := f.service.MigrateAccountToSession(18, "")
	assert.ErrorIs(t, err, ErrIdentityRequired)
}
