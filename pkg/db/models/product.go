package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/enums"
)

// Product is a catalog entry. Cart line items snapshot these fields at
// add-time and never re-read them.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SKU           string                `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name          string                `gorm:"column:name;not null" json:"name"`
	Description   string                `gorm:"column:description" json:"description"`
	Category      enums.ProductCategory `gorm:"column:category;not null;index" json:"category"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric;not null" json:"price"`
	OriginalPrice *decimal.Decimal      `gorm:"column:original_price;type:numeric" json:"original_price,omitempty"`
	Images        pq.StringArray        `gorm:"column:images;type:text[]" json:"images"`
	Stock         int                   `gorm:"column:stock;not null;default:0" json:"stock"`
	WeightGrams   int                   `gorm:"column:weight_grams;not null;default:0" json:"weight_grams"`
	IsActive      bool                  `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Variants      []ProductVariant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FeaturedImage returns the first catalog image, if any.
func (p *Product) FeaturedImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
