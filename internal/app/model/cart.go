package model

import (
	"time"
)

// Cart is one shopping basket. Exactly one of AccountID and SessionToken is
// set; the unique indexes guarantee at most one live cart per owner.
type Cart struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	AccountID    *uint     `gorm:"uniqueIndex" json:"account_id,omitempty"`
	SessionToken *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Lines []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartLine binds one SKU+size to a quantity within a cart. The composite
// unique index keeps a given (product, variant, size) to a single row per
// cart; repeated adds bump Quantity instead of inserting. No price is stored
// here - pricing is always resolved live from the stock ledger.
type CartLine struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_line_sku" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line_sku" json:"product_id"`
	VariantID uint      `gorm:"not null;uniqueIndex:idx_cart_line_sku" json:"variant_id"`
	SizeID    uint      `gorm:"not null;uniqueIndex:idx_cart_line_sku" json:"size_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cart    Cart           `gorm:"foreignKey:CartID" json:"-"`
	Product Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Size    Size           `gorm:"foreignKey:SizeID" json:"size,omitempty"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}
