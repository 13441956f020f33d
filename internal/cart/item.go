package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/pkg/db/models"
)

// LineItem is one product+variant entry in the cart. Catalog fields are
// snapshots taken at add-time and never refreshed.
type LineItem struct {
	ID            string           `json:"id"`
	ProductID     uuid.UUID        `json:"product_id"`
	VariantID     *uuid.UUID       `json:"variant_id,omitempty"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Image         string           `json:"image,omitempty"`
	Stock         int              `json:"stock"`
	WeightGrams   int              `json:"weight_grams"`
	IsAvailable   bool             `json:"is_available"`
	Quantity      int              `json:"quantity"`
	AddedAt       time.Time        `json:"added_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// LineItemID derives the deterministic item key for a product+variant pair,
// guaranteeing at most one line per distinct combination.
func LineItemID(productID uuid.UUID, variantID *uuid.UUID) string {
	if variantID == nil || *variantID == uuid.Nil {
		return productID.String()
	}
	return productID.String() + ":" + variantID.String()
}

// LineTotal returns price times quantity for this line.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemSnapshot is the catalog data copied into a new line item.
type ItemSnapshot struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Name          string
	SKU           string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Image         string
	Stock         int
	WeightGrams   int
}

// SnapshotFromCatalog copies the fields the cart keeps from a product and an
// optionally selected variant. Variant price, stock, and SKU take precedence
// over the parent product's.
func SnapshotFromCatalog(p *models.Product, v *models.ProductVariant) ItemSnapshot {
	snap := ItemSnapshot{
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.FeaturedImage(),
		Stock:         p.Stock,
		WeightGrams:   p.WeightGrams,
	}
	if v != nil {
		variantID := v.ID
		snap.VariantID = &variantID
		snap.SKU = v.SKU
		snap.Price = v.Price
		snap.Stock = v.Stock
		if v.WeightGrams != nil {
			snap.WeightGrams = *v.WeightGrams
		}
		if v.Name != "" {
			snap.Name = p.Name + " / " + v.Name
		}
	}
	return snap
}

// Key returns the deterministic line item id for this snapshot.
func (s ItemSnapshot) Key() string {
	return LineItemID(s.ProductID, s.VariantID)
}
