package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryTops        ProductCategory = "tops"
	CategoryBottoms     ProductCategory = "bottoms"
	CategoryOuterwear   ProductCategory = "outerwear"
	CategoryAccessories ProductCategory = "accessories"
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ProductCategory `gorm:"type:varchar(50)" json:"category"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductVariant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Color     string         `gorm:"not null" json:"color"`
	ImageURL  string         `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// Size is the store-wide size chart ("XS" .. "XXL", shoe sizes, etc.)
type Size struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Label     string    `gorm:"not null;uniqueIndex" json:"label"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (Size) TableName() string {
	return "sizes"
}
