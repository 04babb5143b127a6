package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultUnit is the unit label a product gets when none is supplied.
const DefaultUnit = "piece"

// Product represents a product in the catalog.
// It includes a derived slug, an optional SKU, a whole-number price and the owning category.
type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	SKU         *string         `gorm:"column:sku;uniqueIndex;size:100" json:"sku"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,0);not null" json:"price"`
	Unit        string          `gorm:"size:50;not null;default:piece" json:"unit"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageURL    *string         `gorm:"size:500" json:"imageUrl"`
	CategoryID  string          `gorm:"size:36;not null;index" json:"categoryId"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	IsActive    bool            `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	p.Price = p.Price.Round(0)
	return nil
}

// ProductPatch lists the product fields an admin may change.
// A nil field is left untouched; slug and timestamps are managed by the repository.
type ProductPatch struct {
	Name        *string
	SKU         *string
	Description *string
	Price       *decimal.Decimal
	Unit        *string
	Stock       *int
	ImageURL    *string
	CategoryID  *string
	IsActive    *bool
}

// Empty reports whether the patch carries no changes.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.SKU == nil && p.Description == nil && p.Price == nil &&
		p.Unit == nil && p.Stock == nil && p.ImageURL == nil && p.CategoryID == nil && p.IsActive == nil
}

// ProductStats summarises stock levels across the whole catalog.
type ProductStats struct {
	Total      int `json:"total"`
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}
