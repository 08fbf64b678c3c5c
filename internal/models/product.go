// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	SoftDeleteModel
	Name         string     `json:"name" gorm:"size:255;not null"`
	Slug         string     `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	ParentID     *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	DisplayOrder int        `json:"display_order" gorm:"default:0"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
}

type Product struct {
	SoftDeleteModel
	Name           string           `json:"name" gorm:"size:255;not null"`
	Slug           string           `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description    string           `json:"description" gorm:"type:text"`
	Price          decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price" gorm:"type:decimal(12,2)"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item,omitempty" gorm:"type:decimal(12,2)"`
	SKU            string           `json:"sku,omitempty" gorm:"size:100"`
	Barcode        string           `json:"barcode,omitempty" gorm:"size:100"`
	Quantity       int              `json:"quantity" gorm:"not null;default:0"`
	IsActive       bool             `json:"is_active" gorm:"not null;index"`
	IsFeatured     bool             `json:"is_featured" gorm:"not null;index"`
	CategoryID     *uuid.UUID       `json:"category_id" gorm:"type:uuid;index"`
	Images         StringArray      `json:"images"`
	Metadata       JSONB            `json:"metadata"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// DiscountPercent is the whole-number saving against the compare-at price, 0 without one
func (p *Product) DiscountPercent() int {
	if p.CompareAtPrice == nil || !p.CompareAtPrice.IsPositive() || p.CompareAtPrice.LessThanOrEqual(p.Price) {
		return 0
	}
	saving := p.CompareAtPrice.Sub(p.Price).Div(*p.CompareAtPrice).Mul(decimal.NewFromInt(100))
	return int(saving.Round(0).IntPart())
}

// PrimaryImage returns the first image URL or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
