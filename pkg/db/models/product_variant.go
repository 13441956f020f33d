package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is a purchasable variation of a product (size, color). Its
// price takes precedence over the parent product's price in the cart.
type ProductVariant struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	SKU         string            `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name        string            `gorm:"column:name;not null" json:"name"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric;not null" json:"price"`
	Stock       int               `gorm:"column:stock;not null;default:0" json:"stock"`
	WeightGrams *int              `gorm:"column:weight_grams" json:"weight_grams,omitempty"`
	Options     map[string]string `gorm:"column:options;type:jsonb;serializer:json" json:"options,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
