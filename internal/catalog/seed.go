package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/enums"
)

// SeedDev inserts a small demo catalog when the table is empty. Gated behind
// the seed feature flag; intended for local development only.
func SeedDev(ctx context.Context, repo Repository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return nil
	}

	original := decimal.NewFromFloat(89.99)
	seed := []models.Product{
		{
			SKU:         "LAMP-OAK-01",
			Name:        "Oak Desk Lamp",
			Description: "Warm-light desk lamp with an oak base.",
			Category:    enums.ProductCategoryHome,
			Price:       decimal.NewFromFloat(64.99),
			Images:      pq.StringArray{"https://cdn.example.com/lamp-oak-01.jpg"},
			Stock:       24,
			WeightGrams: 1200,
			IsActive:    true,
		},
		{
			SKU:           "HDPH-BT-09",
			Name:          "Wireless Headphones",
			Description:   "Over-ear Bluetooth headphones, 30h battery.",
			Category:      enums.ProductCategoryElectronics,
			Price:         decimal.NewFromFloat(74.50),
			OriginalPrice: &original,
			Images:        pq.StringArray{"https://cdn.example.com/hdph-bt-09.jpg"},
			Stock:         40,
			WeightGrams:   310,
			IsActive:      true,
		},
		{
			SKU:         "TEE-CT-01",
			Name:        "Cotton T-Shirt",
			Description: "Plain heavyweight cotton tee.",
			Category:    enums.ProductCategoryClothing,
			Price:       decimal.NewFromFloat(18.00),
			Images:      pq.StringArray{"https://cdn.example.com/tee-ct-01.jpg"},
			Stock:       0,
			WeightGrams: 180,
			IsActive:    true,
			Variants: []models.ProductVariant{
				{SKU: "TEE-CT-01-S", Name: "Small", Price: decimal.NewFromFloat(18.00), Stock: 12},
				{SKU: "TEE-CT-01-M", Name: "Medium", Price: decimal.NewFromFloat(18.00), Stock: 7},
				{SKU: "TEE-CT-01-L", Name: "Large", Price: decimal.NewFromFloat(19.50), Stock: 0},
			},
		},
	}

	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			return fmt.Errorf("seeding product %s: %w", seed[i].SKU, err)
		}
	}
	return nil
}
