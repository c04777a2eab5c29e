package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is one entry of the stock ledger: the available quantity and the
// current unit price for a (product, variant, size) combination. It is written
// by the admin stock endpoint only; the cart core reads it and never mutates it.
type Stock struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_stock_sku" json:"product_id"`
	VariantID uint            `gorm:"not null;uniqueIndex:idx_stock_sku" json:"variant_id"`
	SizeID    uint            `gorm:"not null;uniqueIndex:idx_stock_sku" json:"size_id"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Product Product        `gorm:"foreignKey:ProductID" json:"-"`
	Variant ProductVariant `gorm:"foreignKey:VariantID" json:"-"`
	Size    Size           `gorm:"foreignKey:SizeID" json:"-"`
}

func (Stock) TableName() string {
	return "stocks"
}
